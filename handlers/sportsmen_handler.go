package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/services"
)

const queryDateLayout = "2006-01-02"

// SportsmenHandler отдаёт отчёты по спортсменам и справочники для фильтров.
type SportsmenHandler struct {
	reportService services.ReportService
}

func NewSportsmenHandler(rs services.ReportService) *SportsmenHandler {
	return &SportsmenHandler{reportService: rs}
}

func parseSportsmanFilter(r *http.Request) (models.SportsmanFilter, error) {
	q := r.URL.Query()
	filter := models.SportsmanFilter{
		Kind:          models.SportsmanFilterKind(strings.TrimSpace(q.Get("filter"))),
		SportName:     q.Get("sport"),
		Qualification: q.Get("title"),
	}

	coachID, err := queryInt(r, "coach_id")
	if err != nil {
		return filter, err
	}
	if coachID != nil {
		filter.CoachID = *coachID
	}

	for name, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		d, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid %s date %q: expected YYYY-MM-DD", name, raw)
		}
		*dst = d
	}
	return filter, nil
}

func (h *SportsmenHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSportsmanFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.reportService.ListSportsmen(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sportsmen": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SportsmenHandler) Coaches(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	coaches, err := h.reportService.GetCoachesOfSportsman(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"coaches": coaches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCoaches - тренеры, у которых есть спортсмены (источник для фильтра по тренеру).
func (h *SportsmenHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.reportService.ListCoaches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"coaches": coaches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SportsmenHandler) ListQualifications(w http.ResponseWriter, r *http.Request) {
	titles, err := h.reportService.ListQualificationTitles(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualifications": titles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
