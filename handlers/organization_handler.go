package handlers

import (
	"net/http"

	"github.com/Dosada05/sports-registry/services"
)

type OrganizationHandler struct {
	orgService services.OrganizationService
}

func NewOrganizationHandler(os services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: os}
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.OrganizationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.orgService.CreateOrganization(r.Context(), input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgService.ListOrganizations(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"organizations": orgs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "organizationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.orgService.GetOrganization(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "organizationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.OrganizationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.orgService.UpdateOrganization(r.Context(), id, input, actorID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"organization": org}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "organizationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.orgService.DeleteOrganization(r.Context(), id, actorID(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
