package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/sports-registry/middleware"
	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/services"
)

// Фейки встраивают интерфейс сервиса: нереализованные методы паникуют.

type fakeSportService struct {
	services.SportService
	preview     *models.SportDeletePreview
	deleteCalls int
	lastConfirm bool
	lastActorID int
}

func (f *fakeSportService) DeleteSport(ctx context.Context, id int, confirm bool, actorID int) error {
	f.deleteCalls++
	f.lastConfirm = confirm
	f.lastActorID = actorID
	if !confirm {
		return &services.DeleteNotConfirmedError{Preview: f.preview}
	}
	return nil
}

func (f *fakeSportService) GetSportByID(ctx context.Context, id int) (*models.Sport, error) {
	if id != 1 {
		return nil, services.ErrSportNotFound
	}
	return &models.Sport{ID: 1, Name: "Chess"}, nil
}

type fakeBuildingService struct {
	services.BuildingService
	gotFilter models.BuildingFilter
	err       error
}

func (f *fakeBuildingService) ListBuildings(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	f.gotFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return []models.Building{{ID: 1, Name: "Arena", Type: "hall", Places: 800}}, nil
}

type fakeAuthService struct {
	services.AuthService
	user       *models.User
	loginErr   error
	callerRole models.UserRole
}

func (f *fakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.user, nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, id int) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, services.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeAuthService) Register(ctx context.Context, input services.RegisterInput, callerRole models.UserRole) (*models.User, error) {
	f.callerRole = callerRole
	return &models.User{ID: 2, Username: input.Username, Role: models.RoleOperator}, nil
}

type fakeReportService struct {
	services.ReportService
	gotFilter models.SportsmanFilter
}

func (f *fakeReportService) ListSportsmen(ctx context.Context, filter models.SportsmanFilter) ([]models.SportsmanRow, error) {
	f.gotFilter = filter
	return []models.SportsmanRow{}, nil
}

type fakePersonService struct {
	services.PersonService
	gotIsCoach *bool
	listCalls  int
}

func (f *fakePersonService) ListPeople(ctx context.Context, isCoach *bool) ([]models.Person, error) {
	f.listCalls++
	f.gotIsCoach = isCoach
	return []models.Person{}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

// serve прогоняет запрос через chi-маршрутизатор, чтобы работали URL-параметры.
func serve(method, pattern, target, body string, h http.HandlerFunc, claims jwt.MapClaims) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
