package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/sports-registry/models"
	"github.com/Dosada05/sports-registry/services"
)

type BuildingHandler struct {
	buildingService services.BuildingService
}

func NewBuildingHandler(bs services.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildingService: bs}
}

func (h *BuildingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.BuildingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	b, err := h.buildingService.CreateBuilding(r.Context(), input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"building": b}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List поддерживает ?type= и ?min_places=; оба фильтра объединяются через AND.
func (h *BuildingHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.BuildingFilter

	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		filter.Type = &t
	}
	minPlaces, err := queryInt(r, "min_places")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.MinPlaces = minPlaces

	buildings, err := h.buildingService.ListBuildings(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"buildings": buildings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BuildingHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.buildingService.ListBuildingTypes(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"types": types}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BuildingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "buildingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	b, err := h.buildingService.GetBuilding(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"building": b}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BuildingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "buildingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.BuildingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	b, err := h.buildingService.UpdateBuilding(r.Context(), id, input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"building": b}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BuildingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "buildingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.buildingService.DeleteBuilding(r.Context(), id, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
