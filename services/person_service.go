package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/realtime"
	"github.com/Dosada05/sports-registry/repositories"
	"github.com/Dosada05/sports-registry/storage"
)

const dateLayout = "2006-01-02"

var (
	ErrPersonNameRequired   = errors.New("first name and last name are required")
	ErrPersonBirthDate      = errors.New("birthdate must be a valid YYYY-MM-DD date not in the future")
	ErrPersonNotCoach       = errors.New("person is not a coach")
	ErrPersonIsCoach        = errors.New("person is a coach, not a sportsman")
	ErrExperienceTitle      = errors.New("experience title is required")
	ErrExperienceReference  = errors.New("experience sport does not exist")
	ErrLinkReferenceInvalid = errors.New("referenced person or sport does not exist")
	ErrUnsupportedPhotoType = errors.New("unsupported photo content type")
	ErrPhotoUploadFailed    = errors.New("failed to upload photo")
)

type PersonService interface {
	CreatePerson(ctx context.Context, input PersonInput, actorID int) (*models.Person, error)
	GetPerson(ctx context.Context, id int) (*models.Person, error)
	ListPeople(ctx context.Context, isCoach *bool) ([]models.Person, error)
	UpdatePerson(ctx context.Context, id int, input PersonInput, actorID int) (*models.Person, error)
	DeletePerson(ctx context.Context, id int, actorID int) error
	GetPersonCard(ctx context.Context, id int) (*models.PersonCard, error)

	AddExperience(ctx context.Context, personID int, input ExperienceInput, actorID int) (*models.Experience, error)
	ListExperience(ctx context.Context, personID int) ([]models.Experience, error)
	DeleteExperience(ctx context.Context, personID, experienceID int, actorID int) error

	AssignCoachSport(ctx context.Context, coachID, sportID int, actorID int) error
	RemoveCoachSport(ctx context.Context, coachID, sportID int, actorID int) error
	AssignTraining(ctx context.Context, sportsmanID int, input TrainingInput, actorID int) (*models.Training, error)
	RemoveTraining(ctx context.Context, sportsmanID, sportID int, actorID int) error

	UploadPhoto(ctx context.Context, personID int, contentType string, reader io.Reader) (*models.Person, error)
}

type PersonInput struct {
	FirstName  string  `json:"firstname"`
	LastName   string  `json:"lastname"`
	MiddleName *string `json:"middlename"`
	BirthDate  string  `json:"birthdate"` // YYYY-MM-DD
	IsCoach    bool    `json:"is_coach"`
}

type ExperienceInput struct {
	SportID   int     `json:"sport_id"`
	Title     string  `json:"title"`
	AwardedOn *string `json:"awarded_on"` // YYYY-MM-DD
}

type TrainingInput struct {
	SportID int  `json:"sport_id"`
	CoachID *int `json:"coach_id"`
}

type personService struct {
	personRepo     repositories.PersonRepository
	experienceRepo repositories.ExperienceRepository
	trainingRepo   repositories.TrainingRepository
	sportRepo      repositories.SportRepository
	reportRepo     repositories.ReportRepository
	uploader       storage.FileUploader
	notifier       *Notifier
	logger         *slog.Logger
	now            func() time.Time
}

func NewPersonService(
	personRepo repositories.PersonRepository,
	experienceRepo repositories.ExperienceRepository,
	trainingRepo repositories.TrainingRepository,
	sportRepo repositories.SportRepository,
	reportRepo repositories.ReportRepository,
	uploader storage.FileUploader,
	notifier *Notifier,
	logger *slog.Logger,
) PersonService {
	return &personService{
		personRepo:     personRepo,
		experienceRepo: experienceRepo,
		trainingRepo:   trainingRepo,
		sportRepo:      sportRepo,
		reportRepo:     reportRepo,
		uploader:       uploader,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *personService) toModel(id int, input PersonInput) (*models.Person, error) {
	p := &models.Person{
		ID:         id,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		MiddleName: trimOptional(input.MiddleName),
		IsCoach:    input.IsCoach,
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, ErrPersonNameRequired
	}

	birth, err := time.Parse(dateLayout, strings.TrimSpace(input.BirthDate))
	if err != nil || birth.After(dateOnly(s.now())) {
		return nil, ErrPersonBirthDate
	}
	p.BirthDate = birth
	return p, nil
}

func (s *personService) CreatePerson(ctx context.Context, input PersonInput, actorID int) (*models.Person, error) {
	p, err := s.toModel(0, input)
	if err != nil {
		return nil, err
	}
	if err := s.personRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	s.changed(ctx, queue.ActionCreated, p, actorID)
	return p, nil
}

func (s *personService) GetPerson(ctx context.Context, id int) (*models.Person, error) {
	p, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person %d: %w", id, err)
	}
	populatePersonPhotoURLFunc(p, s.uploader)
	return p, nil
}

func (s *personService) ListPeople(ctx context.Context, isCoach *bool) ([]models.Person, error) {
	people, err := s.personRepo.List(ctx, isCoach)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	for i := range people {
		populatePersonPhotoURLFunc(&people[i], s.uploader)
	}
	return people, nil
}

func (s *personService) UpdatePerson(ctx context.Context, id int, input PersonInput, actorID int) (*models.Person, error) {
	p, err := s.toModel(id, input)
	if err != nil {
		return nil, err
	}
	if err := s.personRepo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPersonNotFound):
			return nil, ErrPersonNotFound
		case errors.Is(err, repositories.ErrPersonRoleLocked):
			return nil, ErrPersonRoleLocked
		}
		return nil, fmt.Errorf("failed to update person %d: %w", id, err)
	}

	s.changed(ctx, queue.ActionUpdated, p, actorID)
	return s.GetPerson(ctx, id)
}

func (s *personService) DeletePerson(ctx context.Context, id int, actorID int) error {
	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	if err := s.personRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return ErrPersonNotFound
		}
		return fmt.Errorf("failed to delete person %d: %w", id, err)
	}

	if p.PhotoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *p.PhotoKey); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete person photo", slog.Int("person_id", id), slog.Any("error", err))
		}
	}

	s.changed(ctx, queue.ActionDeleted, p, actorID)
	return nil
}

// GetPersonCard собирает карточку: квалификации и, в зависимости от роли,
// виды спорта тренера или тренеров и тренировки спортсмена.
func (s *personService) GetPersonCard(ctx context.Context, id int) (*models.PersonCard, error) {
	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	card := &models.PersonCard{Person: p}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		exp, err := s.experienceRepo.ListByPerson(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to load experience: %w", err)
		}
		card.Experience = exp
		return nil
	})
	if p.IsCoach {
		g.Go(func() error {
			sports, err := s.sportRepo.ListByCoach(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load coach sports: %w", err)
			}
			card.Sports = sports
			return nil
		})
	} else {
		g.Go(func() error {
			coaches, err := s.reportRepo.CoachesOfSportsman(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load coaches: %w", err)
			}
			card.Coaches = coaches
			return nil
		})
		g.Go(func() error {
			trainings, err := s.trainingRepo.ListTrainings(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load trainings: %w", err)
			}
			card.Trainings = trainings
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *personService) AddExperience(ctx context.Context, personID int, input ExperienceInput, actorID int) (*models.Experience, error) {
	p, err := s.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	e := &models.Experience{
		PersonID: personID,
		SportID:  input.SportID,
		Title:    strings.TrimSpace(input.Title),
	}
	if e.Title == "" {
		return nil, ErrExperienceTitle
	}
	if awarded := trimOptional(input.AwardedOn); awarded != nil {
		d, err := time.Parse(dateLayout, *awarded)
		if err != nil {
			return nil, fmt.Errorf("%w: awarded_on must be YYYY-MM-DD", ErrValidationFailed)
		}
		e.AwardedOn = &d
	}

	if err := s.experienceRepo.Create(ctx, e); err != nil {
		switch {
		case errors.Is(err, repositories.ErrExperienceSportInvalid):
			return nil, ErrExperienceReference
		case errors.Is(err, repositories.ErrExperiencePersonInvalid):
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to add experience: %w", err)
	}

	s.changed(ctx, queue.ActionUpdated, p, actorID)
	return e, nil
}

func (s *personService) ListExperience(ctx context.Context, personID int) ([]models.Experience, error) {
	if _, err := s.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	exp, err := s.experienceRepo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list experience: %w", err)
	}
	return exp, nil
}

func (s *personService) DeleteExperience(ctx context.Context, personID, experienceID int, actorID int) error {
	p, err := s.GetPerson(ctx, personID)
	if err != nil {
		return err
	}
	if err := s.experienceRepo.Delete(ctx, personID, experienceID); err != nil {
		if errors.Is(err, repositories.ErrExperienceNotFound) {
			return ErrExperienceNotFound
		}
		return fmt.Errorf("failed to delete experience %d: %w", experienceID, err)
	}

	s.changed(ctx, queue.ActionUpdated, p, actorID)
	return nil
}

func (s *personService) requireCoach(ctx context.Context, id int, wantCoach bool) (*models.Person, error) {
	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case wantCoach && !p.IsCoach:
		return nil, ErrPersonNotCoach
	case !wantCoach && p.IsCoach:
		return nil, ErrPersonIsCoach
	}
	return p, nil
}

func (s *personService) AssignCoachSport(ctx context.Context, coachID, sportID int, actorID int) error {
	coach, err := s.requireCoach(ctx, coachID, true)
	if err != nil {
		return err
	}
	if err := s.trainingRepo.AddCoachSport(ctx, coachID, sportID); err != nil {
		if errors.Is(err, repositories.ErrLinkInvalid) {
			return ErrLinkReferenceInvalid
		}
		return fmt.Errorf("failed to link coach %d to sport %d: %w", coachID, sportID, err)
	}

	s.changed(ctx, queue.ActionUpdated, coach, actorID)
	return nil
}

func (s *personService) RemoveCoachSport(ctx context.Context, coachID, sportID int, actorID int) error {
	coach, err := s.requireCoach(ctx, coachID, true)
	if err != nil {
		return err
	}
	if err := s.trainingRepo.RemoveCoachSport(ctx, coachID, sportID); err != nil {
		if errors.Is(err, repositories.ErrCoachSportNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to unlink coach %d from sport %d: %w", coachID, sportID, err)
	}

	s.changed(ctx, queue.ActionUpdated, coach, actorID)
	return nil
}

func (s *personService) AssignTraining(ctx context.Context, sportsmanID int, input TrainingInput, actorID int) (*models.Training, error) {
	sportsman, err := s.requireCoach(ctx, sportsmanID, false)
	if err != nil {
		return nil, err
	}
	if input.CoachID != nil {
		if _, err := s.requireCoach(ctx, *input.CoachID, true); err != nil {
			return nil, err
		}
	}

	t := &models.Training{SportsmanID: sportsmanID, SportID: input.SportID, CoachID: input.CoachID}
	if err := s.trainingRepo.UpsertTraining(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrLinkInvalid) {
			return nil, ErrLinkReferenceInvalid
		}
		return nil, fmt.Errorf("failed to assign training: %w", err)
	}

	s.changed(ctx, queue.ActionUpdated, sportsman, actorID)
	return t, nil
}

func (s *personService) RemoveTraining(ctx context.Context, sportsmanID, sportID int, actorID int) error {
	sportsman, err := s.requireCoach(ctx, sportsmanID, false)
	if err != nil {
		return err
	}
	if err := s.trainingRepo.RemoveTraining(ctx, sportsmanID, sportID); err != nil {
		if errors.Is(err, repositories.ErrTrainingNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to remove training: %w", err)
	}

	s.changed(ctx, queue.ActionUpdated, sportsman, actorID)
	return nil
}

// UploadPhoto заменяет фото человека; старый объект удаляется из хранилища.
func (s *personService) UploadPhoto(ctx context.Context, personID int, contentType string, reader io.Reader) (*models.Person, error) {
	if s.uploader == nil {
		return nil, ErrStorageUnavailable
	}
	p, err := s.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedPhotoType, err)
	}

	// Новый ключ на каждую загрузку, чтобы CDN не отдавал старое фото.
	key := fmt.Sprintf("people/%d/%s%s", personID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPhotoUploadFailed, err)
	}

	if err := s.personRepo.UpdatePhotoKey(ctx, personID, &key); err != nil {
		if errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to save photo key: %w", err)
	}

	if old := derefString(p.PhotoKey); old != "" && old != key {
		if err := s.uploader.Delete(ctx, old); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete previous photo", slog.Int("person_id", personID), slog.String("key", old), slog.Any("error", err))
		}
	}

	p.PhotoKey = &key
	p.PhotoURL = nil
	populatePersonPhotoURLFunc(p, s.uploader)
	return p, nil
}

func (s *personService) changed(ctx context.Context, action string, p *models.Person, actorID int) {
	entity := "sportsman"
	if p.IsCoach {
		entity = "coach"
	}
	s.notifier.Changed(ctx, realtime.RoomSportsmen, MsgPeopleChanged, queue.EntityEvent{
		Entity:  entity,
		Action:  action,
		ID:      p.ID,
		Name:    fullName(p.FirstName, p.LastName, p.MiddleName),
		ActorID: actorID,
	})
}
