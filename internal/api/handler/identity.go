package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/resonance/internal/api/request"
	"github.com/mcoot/resonance/internal/api/response"
	"github.com/mcoot/resonance/internal/services/identity"
)

// IdentityHandler handles device identity endpoints
type IdentityHandler struct {
	identityService *identity.Service
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(identityService *identity.Service) *IdentityHandler {
	return &IdentityHandler{
		identityService: identityService,
	}
}

// Get handles GET /api/v1/identity. An unknown device is not an error: the
// identity is null and the view should prompt for a name.
func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := response.IdentityResponse{}
	if id, ok := h.identityService.Resolve(r.Context()); ok {
		converted := response.IdentityFromModel(id)
		resp.Identity = &converted
	}
	response.JSON(w, http.StatusOK, resp)
}

// Commit handles PUT /api/v1/identity
func (h *IdentityHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req request.CommitIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	id, err := h.identityService.Commit(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	converted := response.IdentityFromModel(id)
	response.JSON(w, http.StatusOK, response.IdentityResponse{Identity: &converted})
}
