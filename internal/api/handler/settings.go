package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/resonance/internal/api/request"
	"github.com/mcoot/resonance/internal/api/response"
	"github.com/mcoot/resonance/internal/services/settings"
)

// SettingsHandler handles settings endpoints
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{
		store: store,
	}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SettingsFromModel(h.store.Get()))
}

// Update handles PATCH /api/v1/settings. Out of range volumes are clamped.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	patch := req.Patch()
	if patch.IsEmpty() {
		WriteError(w, NewInvalidRequestError("at least one of dark_mode, volume, visualizer_enabled is required"))
		return
	}

	updated := h.store.Update(r.Context(), patch)
	response.JSON(w, http.StatusOK, response.SettingsFromModel(updated))
}

// Reset handles POST /api/v1/settings/reset
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SettingsFromModel(h.store.Reset(r.Context())))
}
