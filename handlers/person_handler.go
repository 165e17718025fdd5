package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/sports-registry/services"
)

const maxPhotoSize = 5 << 20 // 5MB

type PersonHandler struct {
	personService services.PersonService
}

func NewPersonHandler(ps services.PersonService) *PersonHandler {
	return &PersonHandler{personService: ps}
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.PersonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	p, err := h.personService.CreatePerson(r.Context(), input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"person": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List поддерживает ?coach=true|false.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	var isCoach *bool
	if raw := strings.TrimSpace(r.URL.Query().Get("coach")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid coach value: %q", raw))
			return
		}
		isCoach = &v
	}

	people, err := h.personService.ListPeople(r.Context(), isCoach)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"people": people}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAllCoaches возвращает всех тренеров, в том числе без спортсменов.
func (h *PersonHandler) ListAllCoaches(w http.ResponseWriter, r *http.Request) {
	isCoach := true
	coaches, err := h.personService.ListPeople(r.Context(), &isCoach)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"coaches": coaches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	p, err := h.personService.GetPerson(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"person": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) Card(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	card, err := h.personService.GetPersonCard(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"card": card}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PersonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	p, err := h.personService.UpdatePerson(r.Context(), id, input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"person": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.personService.DeletePerson(r.Context(), id, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PersonHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	p, err := h.personService.UploadPhoto(r.Context(), id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"person": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) ListExperience(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	list, err := h.personService.ListExperience(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"experience": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ExperienceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	e, err := h.personService.AddExperience(r.Context(), id, input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"experience": e}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	personID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	experienceID, err := getIDFromURL(r, "experienceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.personService.DeleteExperience(r.Context(), personID, experienceID, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PersonHandler) AssignCoachSport(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		SportID int `json:"sport_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.SportID <= 0 {
		badRequestResponse(w, r, errors.New("sport_id is required"))
		return
	}

	if err := h.personService.AssignCoachSport(r.Context(), coachID, input.SportID, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PersonHandler) RemoveCoachSport(w http.ResponseWriter, r *http.Request) {
	coachID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sportID, err := getIDFromURL(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.personService.RemoveCoachSport(r.Context(), coachID, sportID, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PersonHandler) AssignTraining(w http.ResponseWriter, r *http.Request) {
	sportsmanID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.TrainingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.SportID <= 0 {
		badRequestResponse(w, r, errors.New("sport_id is required"))
		return
	}

	t, err := h.personService.AssignTraining(r.Context(), sportsmanID, input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"training": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) RemoveTraining(w http.ResponseWriter, r *http.Request) {
	sportsmanID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sportID, err := getIDFromURL(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.personService.RemoveTraining(r.Context(), sportsmanID, sportID, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
