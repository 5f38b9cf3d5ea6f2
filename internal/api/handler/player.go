package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/resonance/internal/api/request"
	"github.com/mcoot/resonance/internal/api/response"
	"github.com/mcoot/resonance/internal/services/player"
)

// PlayerHandler handles playback endpoints
type PlayerHandler struct {
	machine *player.Machine
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(machine *player.Machine) *PlayerHandler {
	return &PlayerHandler{
		machine: machine,
	}
}

// Get handles GET /api/v1/player
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(h.machine.State()))
}

// Dispatch handles POST /api/v1/player/intents
func (h *PlayerHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req request.IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Type == "" {
		WriteError(w, NewInvalidRequestError("type is required"))
		return
	}
	if req.NeedsValue() && req.Value == nil {
		WriteError(w, NewInvalidRequestError("value is required for "+req.Type))
		return
	}

	state, err := h.machine.Dispatch(r.Context(), req.Intent())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(state))
}
