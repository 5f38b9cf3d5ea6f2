package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/resonance/internal/api/response"
	"github.com/mcoot/resonance/internal/api/sse"
	"github.com/mcoot/resonance/internal/services/player"
	"github.com/mcoot/resonance/internal/services/settings"
)

// EventsHandler streams state changes to views over SSE
type EventsHandler struct {
	hub      *sse.Hub
	machine  *player.Machine
	settings *settings.Store
	logger   *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *sse.Hub, machine *player.Machine, settings *settings.Store, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hub:      hub,
		machine:  machine,
		settings: settings,
		logger:   logger,
	}
}

// Stream handles GET /api/v1/events. The stream opens with the current
// settings, theme and player state.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sse.ServeSSE(w, r, h.hub, h.snapshot)
}

func (h *EventsHandler) snapshot() [][]byte {
	current := h.settings.Get()
	events := []struct {
		name    string
		payload any
	}{
		{sse.EventSettings, response.SettingsFromModel(current)},
		{sse.EventTheme, response.ThemeFromDarkMode(current.DarkMode)},
		{sse.EventPlayerState, response.PlayerStateFromModel(h.machine.State())},
	}

	messages := make([][]byte, 0, len(events))
	for _, e := range events {
		msg, err := sse.Message(e.name, e.payload)
		if err != nil {
			h.logger.Error("sse failed to encode snapshot",
				slog.String("event", e.name),
				slog.Any("error", err))
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}
