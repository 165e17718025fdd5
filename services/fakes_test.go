package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/repositories"
	"github.com/Dosada05/sports-registry/storage"
)

type broadcast struct {
	room, msgType string
}

type fakeHub struct {
	mu   sync.Mutex
	sent []broadcast
}

func (h *fakeHub) Broadcast(room, msgType string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, broadcast{room: room, msgType: msgType})
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.EntityEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event queue.EntityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	data        map[string]interface{}
	gets        int
	invalidated int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]interface{}{}} }

func (c *fakeCache) Key(name string, args ...interface{}) string {
	parts := []string{"report", name}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, ":")
}

func (c *fakeCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]models.SportsmanRow:
		*d = v.([]models.SportsmanRow)
	case *[]models.CoachRow:
		*d = v.([]models.CoachRow)
	case *[]string:
		*d = v.([]string)
	default:
		return false, fmt.Errorf("unexpected cache destination %T", dst)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.data = map[string]interface{}{}
	return nil
}

type testNotifier struct {
	*Notifier
	hub    *fakeHub
	events *fakePublisher
	cache  *fakeCache
}

func newTestNotifier() testNotifier {
	hub, events, cache := &fakeHub{}, &fakePublisher{}, newFakeCache()
	return testNotifier{
		Notifier: NewNotifier(hub, events, cache, nil),
		hub:      hub,
		events:   events,
		cache:    cache,
	}
}

// --- repositories ---

type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*models.User
	nextID int
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(user)
}

func (r *fakeUserRepo) create(user *models.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) CreateFirstAdmin(ctx context.Context, user *models.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.users) > 0 {
		return false, nil
	}
	user.Role = models.RoleAdmin
	return true, r.create(user)
}

type fakeSportRepo struct {
	sports    map[int]*models.Sport
	byCoach   map[int][]models.Sport
	deleteErr error
	deleted   []int
}

func newFakeSportRepo(sports ...models.Sport) *fakeSportRepo {
	r := &fakeSportRepo{sports: map[int]*models.Sport{}, byCoach: map[int][]models.Sport{}}
	for i := range sports {
		s := sports[i]
		r.sports[s.ID] = &s
	}
	return r
}

func (r *fakeSportRepo) Create(ctx context.Context, sport *models.Sport) error {
	for _, s := range r.sports {
		if s.Name == sport.Name {
			return repositories.ErrSportNameConflict
		}
	}
	sport.ID = len(r.sports) + 1
	r.sports[sport.ID] = sport
	return nil
}

func (r *fakeSportRepo) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	s, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	return s, nil
}

func (r *fakeSportRepo) GetAll(ctx context.Context) ([]models.Sport, error) {
	out := make([]models.Sport, 0, len(r.sports))
	for _, s := range r.sports {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSportRepo) Update(ctx context.Context, sport *models.Sport) error {
	if _, ok := r.sports[sport.ID]; !ok {
		return repositories.ErrSportNotFound
	}
	for id, s := range r.sports {
		if id != sport.ID && s.Name == sport.Name {
			return repositories.ErrSportNameConflict
		}
	}
	r.sports[sport.ID] = sport
	return nil
}

func (r *fakeSportRepo) CountDependents(ctx context.Context, id int) (*models.SportDeletePreview, error) {
	s, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	return &models.SportDeletePreview{SportID: id, SportName: s.Name, CoachLinks: 1, Trainings: 2}, nil
}

func (r *fakeSportRepo) DeleteWithDependents(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	delete(r.sports, id)
	return nil
}

func (r *fakeSportRepo) ListByCoach(ctx context.Context, coachID int) ([]models.Sport, error) {
	return r.byCoach[coachID], nil
}

type fakeReportRepo struct {
	mu              sync.Mutex
	calls           int
	lastFilter      models.SportsmanFilter
	rows            []models.SportsmanRow
	coachesOfSport  []models.CoachRow
	coachesOfPerson map[int][]models.CoachRow
}

func (r *fakeReportRepo) CoachesOfSport(ctx context.Context, sportID int) ([]models.CoachRow, error) {
	return r.coachesOfSport, nil
}

func (r *fakeReportRepo) CoachesOfSportsman(ctx context.Context, sportsmanID int) ([]models.CoachRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.coachesOfPerson[sportsmanID], nil
}

func (r *fakeReportRepo) CoachesWithSportsmen(ctx context.Context) ([]models.CoachRow, error) {
	return r.coachesOfSport, nil
}

func (r *fakeReportRepo) Sportsmen(ctx context.Context, filter models.SportsmanFilter) ([]models.SportsmanRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastFilter = filter
	return r.rows, nil
}

type fakePersonRepo struct {
	mu     sync.Mutex
	people map[int]*models.Person
	nextID int
	// linked сообщает, есть ли у человека связи, блокирующие смену роли.
	linked func(id int) bool
}

func newFakePersonRepo(people ...models.Person) *fakePersonRepo {
	r := &fakePersonRepo{people: map[int]*models.Person{}}
	for i := range people {
		p := people[i]
		r.people[p.ID] = &p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePersonRepo) Create(ctx context.Context, p *models.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.people[p.ID] = &cp
	return nil
}

func (r *fakePersonRepo) GetByID(ctx context.Context, id int) (*models.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.people[id]
	if !ok {
		return nil, repositories.ErrPersonNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePersonRepo) List(ctx context.Context, isCoach *bool) ([]models.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Person, 0)
	for _, p := range r.people {
		if isCoach == nil || p.IsCoach == *isCoach {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePersonRepo) Update(ctx context.Context, p *models.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.people[p.ID]
	if !ok {
		return repositories.ErrPersonNotFound
	}
	if old.IsCoach != p.IsCoach && r.linked != nil && r.linked(p.ID) {
		return repositories.ErrPersonRoleLocked
	}
	cp := *p
	cp.PhotoKey = old.PhotoKey
	r.people[p.ID] = &cp
	return nil
}

func (r *fakePersonRepo) UpdatePhotoKey(ctx context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.people[id]
	if !ok {
		return repositories.ErrPersonNotFound
	}
	p.PhotoKey = key
	return nil
}

func (r *fakePersonRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.people[id]; !ok {
		return repositories.ErrPersonNotFound
	}
	delete(r.people, id)
	return nil
}

type fakeExperienceRepo struct {
	records []models.Experience
	titles  []string
}

func (r *fakeExperienceRepo) Create(ctx context.Context, e *models.Experience) error {
	if e.SportID <= 0 {
		return repositories.ErrExperienceSportInvalid
	}
	e.ID = len(r.records) + 1
	r.records = append(r.records, *e)
	return nil
}

func (r *fakeExperienceRepo) ListByPerson(ctx context.Context, personID int) ([]models.Experience, error) {
	out := make([]models.Experience, 0)
	for _, e := range r.records {
		if e.PersonID == personID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExperienceRepo) Delete(ctx context.Context, personID, id int) error {
	for i, e := range r.records {
		if e.ID == id && e.PersonID == personID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return repositories.ErrExperienceNotFound
}

func (r *fakeExperienceRepo) ListTitles(ctx context.Context) ([]string, error) {
	return r.titles, nil
}

type fakeTrainingRepo struct {
	coachSports map[[2]int]bool
	trainings   []models.Training
}

func newFakeTrainingRepo() *fakeTrainingRepo {
	return &fakeTrainingRepo{coachSports: map[[2]int]bool{}}
}

func (r *fakeTrainingRepo) AddCoachSport(ctx context.Context, coachID, sportID int) error {
	r.coachSports[[2]int{coachID, sportID}] = true
	return nil
}

func (r *fakeTrainingRepo) RemoveCoachSport(ctx context.Context, coachID, sportID int) error {
	k := [2]int{coachID, sportID}
	if !r.coachSports[k] {
		return repositories.ErrCoachSportNotFound
	}
	delete(r.coachSports, k)
	return nil
}

func (r *fakeTrainingRepo) UpsertTraining(ctx context.Context, t *models.Training) error {
	for i, existing := range r.trainings {
		if existing.SportsmanID == t.SportsmanID && existing.SportID == t.SportID {
			r.trainings[i] = *t
			return nil
		}
	}
	r.trainings = append(r.trainings, *t)
	return nil
}

func (r *fakeTrainingRepo) RemoveTraining(ctx context.Context, sportsmanID, sportID int) error {
	for i, t := range r.trainings {
		if t.SportsmanID == sportsmanID && t.SportID == sportID {
			r.trainings = append(r.trainings[:i], r.trainings[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTrainingNotFound
}

func (r *fakeTrainingRepo) hasLinks(personID int) bool {
	for k := range r.coachSports {
		if k[0] == personID {
			return true
		}
	}
	for _, t := range r.trainings {
		if t.SportsmanID == personID || (t.CoachID != nil && *t.CoachID == personID) {
			return true
		}
	}
	return false
}

func (r *fakeTrainingRepo) ListTrainings(ctx context.Context, sportsmanID int) ([]models.Training, error) {
	out := make([]models.Training, 0)
	for _, t := range r.trainings {
		if t.SportsmanID == sportsmanID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func newFakeUploader() *fakeUploader { return &fakeUploader{uploaded: map[string]string{}} }

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded[key] = string(body)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeOrganizationRepo struct {
	orgs  map[int]*models.Organization
	inUse map[int]bool
}

func newFakeOrganizationRepo(orgs ...models.Organization) *fakeOrganizationRepo {
	r := &fakeOrganizationRepo{orgs: map[int]*models.Organization{}, inUse: map[int]bool{}}
	for i := range orgs {
		o := orgs[i]
		r.orgs[o.ID] = &o
	}
	return r
}

func (r *fakeOrganizationRepo) nameTaken(id int, name string) bool {
	for otherID, o := range r.orgs {
		if otherID != id && o.Name == name {
			return true
		}
	}
	return false
}

func (r *fakeOrganizationRepo) Create(ctx context.Context, org *models.Organization) error {
	if r.nameTaken(0, org.Name) {
		return repositories.ErrOrganizationNameConflict
	}
	org.ID = len(r.orgs) + 1
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrganizationRepo) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, repositories.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *fakeOrganizationRepo) GetAll(ctx context.Context) ([]models.Organization, error) {
	out := make([]models.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrganizationRepo) Update(ctx context.Context, org *models.Organization) error {
	if _, ok := r.orgs[org.ID]; !ok {
		return repositories.ErrOrganizationNotFound
	}
	if r.nameTaken(org.ID, org.Name) {
		return repositories.ErrOrganizationNameConflict
	}
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrganizationRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.orgs[id]; !ok {
		return repositories.ErrOrganizationNotFound
	}
	if r.inUse[id] {
		return repositories.ErrOrganizationInUse
	}
	delete(r.orgs, id)
	return nil
}

type fakeCompetitionRepo struct {
	competitions map[int]*models.Competition
	participants map[[2]int]models.CompetitionParticipant
}

func newFakeCompetitionRepo(competitions ...models.Competition) *fakeCompetitionRepo {
	r := &fakeCompetitionRepo{
		competitions: map[int]*models.Competition{},
		participants: map[[2]int]models.CompetitionParticipant{},
	}
	for i := range competitions {
		c := competitions[i]
		r.competitions[c.ID] = &c
	}
	return r
}

func (r *fakeCompetitionRepo) Create(ctx context.Context, c *models.Competition) error {
	// sport 404 в тестах не существует
	if c.SportID == 404 {
		return repositories.ErrCompetitionReferenceInvalid
	}
	c.ID = len(r.competitions) + 1
	r.competitions[c.ID] = c
	return nil
}

func (r *fakeCompetitionRepo) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	c, ok := r.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	return c, nil
}

func (r *fakeCompetitionRepo) List(ctx context.Context, sportID *int) ([]models.Competition, error) {
	out := make([]models.Competition, 0, len(r.competitions))
	for _, c := range r.competitions {
		if sportID == nil || c.SportID == *sportID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCompetitionRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.competitions[id]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	delete(r.competitions, id)
	return nil
}

func (r *fakeCompetitionRepo) AddParticipant(ctx context.Context, p *models.CompetitionParticipant) error {
	k := [2]int{p.CompetitionID, p.SportsmanID}
	if _, ok := r.participants[k]; ok {
		return repositories.ErrCompetitionParticipantExists
	}
	r.participants[k] = *p
	return nil
}

func (r *fakeCompetitionRepo) RemoveParticipant(ctx context.Context, competitionID, sportsmanID int) error {
	k := [2]int{competitionID, sportsmanID}
	if _, ok := r.participants[k]; !ok {
		return repositories.ErrCompetitionParticipantAbsent
	}
	delete(r.participants, k)
	return nil
}

func (r *fakeCompetitionRepo) ListParticipants(ctx context.Context, competitionID int) ([]models.CompetitionParticipant, error) {
	out := make([]models.CompetitionParticipant, 0)
	for k, p := range r.participants {
		if k[0] == competitionID {
			out = append(out, p)
		}
	}
	return out, nil
}
