package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/services"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDeleteSport_RequiresConfirmation(t *testing.T) {
	svc := &fakeSportService{preview: &models.SportDeletePreview{
		SportID:    3,
		SportName:  "Chess",
		Trainings:  4,
		CoachLinks: 1,
		Message:    "Delete Chess and all connected tables?",
	}}
	h := NewSportHandler(svc)

	rec := serve(http.MethodDelete, "/sports/{sportID}", "/sports/3", "", h.DeleteSport, jwt.MapClaims{"user_id": float64(7)})

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Delete Chess and all connected tables?", body["error"])
	preview, ok := body["preview"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), preview["trainings"])
	assert.False(t, svc.lastConfirm)
	assert.Equal(t, 7, svc.lastActorID)
}

func TestDeleteSport_Confirmed(t *testing.T) {
	svc := &fakeSportService{}
	h := NewSportHandler(svc)

	rec := serve(http.MethodDelete, "/sports/{sportID}", "/sports/3?confirm=true", "", h.DeleteSport, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.lastConfirm)
	assert.Equal(t, 0, svc.lastActorID)
}

func TestGetSportByID(t *testing.T) {
	h := NewSportHandler(&fakeSportService{})

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"found", "/sports/1", http.StatusOK},
		{"not found", "/sports/2", http.StatusNotFound},
		{"bad id", "/sports/abc", http.StatusBadRequest},
		{"negative id", "/sports/-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(http.MethodGet, "/sports/{sportID}", tt.target, "", h.GetSportByID, nil)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestBuildingList_ParsesFilters(t *testing.T) {
	svc := &fakeBuildingService{}
	h := NewBuildingHandler(svc)

	rec := serve(http.MethodGet, "/buildings", "/buildings?type=hall&min_places=500", "", h.List, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotFilter.Type)
	require.NotNil(t, svc.gotFilter.MinPlaces)
	assert.Equal(t, "hall", *svc.gotFilter.Type)
	assert.Equal(t, 500, *svc.gotFilter.MinPlaces)

	rec = serve(http.MethodGet, "/buildings", "/buildings", "", h.List, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.gotFilter.Type)
	assert.Nil(t, svc.gotFilter.MinPlaces)
}

func TestBuildingList_InvalidFilter(t *testing.T) {
	svc := &fakeBuildingService{}
	h := NewBuildingHandler(svc)

	rec := serve(http.MethodGet, "/buildings", "/buildings?min_places=many", "", h.List, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = fmt.Errorf("wrapped: %w", services.ErrBuildingInvalidFilter)
	rec = serve(http.MethodGet, "/buildings", "/buildings?min_places=0", "", h.List, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_IssuesToken(t *testing.T) {
	secret := "test-secret"
	svc := &fakeAuthService{user: &models.User{ID: 5, Username: "admin", Role: models.RoleAdmin}}
	h := NewAuthHandler(svc, secret)

	rec := serve(http.MethodPost, "/auth/login", "/auth/login", `{"username":"admin","password":"password1"}`, h.Login, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tokenString, ok := decode(t, rec)["token"].(string)
	require.True(t, ok)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, float64(5), claims["user_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Greater(t, claims["exp"].(float64), float64(time.Now().Unix()))
}

func TestLogin_Errors(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{loginErr: services.ErrInvalidCredentials}, "s")

	rec := serve(http.MethodPost, "/auth/login", "/auth/login", `{"username":"admin","password":"wrong"}`, h.Login, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(http.MethodPost, "/auth/login", "/auth/login", `{"username":"admin"}`, h.Login, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(http.MethodPost, "/auth/login", "/auth/login", `{"username":"admin","password":"x","extra":1}`, h.Login, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{user: &models.User{ID: 5, Username: "operator1"}}, "s")

	rec := serve(http.MethodGet, "/auth/me", "/auth/me", "", h.Me, jwt.MapClaims{"user_id": float64(5)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You logged in as operator1", decode(t, rec)["message"])

	rec = serve(http.MethodGet, "/auth/me", "/auth/me", "", h.Me, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_PassesCallerRole(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, "s")

	rec := serve(http.MethodPost, "/auth/register", "/auth/register", `{"username":"op","password":"password1"}`, h.Register,
		jwt.MapClaims{"user_id": float64(1), "role": "admin"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.RoleAdmin, svc.callerRole)

	rec = serve(http.MethodPost, "/auth/register", "/auth/register", `{"username":"op","password":"password1"}`, h.Register, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.UserRole(""), svc.callerRole)
}

func TestSportsmenList_ParsesFilter(t *testing.T) {
	svc := &fakeReportService{}
	h := NewSportsmenHandler(svc)

	rec := serve(http.MethodGet, "/sportsmen", "/sportsmen?filter=no_competitions&from=2024-01-01&to=2024-06-30", "", h.List, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.FilterNoCompetitions, svc.gotFilter.Kind)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), svc.gotFilter.From)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), svc.gotFilter.To)

	rec = serve(http.MethodGet, "/sportsmen", "/sportsmen?filter=coach&coach_id=12", "", h.List, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, svc.gotFilter.CoachID)

	rec = serve(http.MethodGet, "/sportsmen", "/sportsmen?filter=no_competitions&from=01.01.2024", "", h.List, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPeopleList_CoachParam(t *testing.T) {
	svc := &fakePersonService{}
	h := NewPersonHandler(svc)

	rec := serve(http.MethodGet, "/people", "/people?coach=true", "", h.List, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotIsCoach)
	assert.True(t, *svc.gotIsCoach)

	rec = serve(http.MethodGet, "/people", "/people?coach=maybe", "", h.List, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, svc.listCalls)
}

func TestHealthz(t *testing.T) {
	rec := serve(http.MethodGet, "/healthz", "/healthz", "", NewHealthHandler(fakePinger{}).Healthz, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodGet, "/healthz", "/healthz", "", NewHealthHandler(fakePinger{err: errors.New("down")}).Healthz, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrPersonNotFound, http.StatusNotFound},
		{fmt.Errorf("ctx: %w", services.ErrSportNotFound), http.StatusNotFound},
		{services.ErrSportNameConflict, http.StatusConflict},
		{services.ErrOrganizationInUse, http.StatusConflict},
		{services.ErrPersonRoleLocked, http.StatusConflict},
		{services.ErrBuildingInvalidPlaces, http.StatusBadRequest},
		{services.ErrReportDateRange, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbiddenOperation, http.StatusForbidden},
		{services.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
