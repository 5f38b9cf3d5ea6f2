package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/resonance/internal/api/response"
	"github.com/mcoot/resonance/internal/model"
)

// Event names sent to views
const (
	EventPlayerState = "player-state"
	EventSettings    = "settings"
	EventTheme       = "theme"
)

// Broadcaster turns store notifications into SSE events. It also serves as
// the settings store's theme applier.
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// PlayerChanged broadcasts the new playback state
func (b *Broadcaster) PlayerChanged(state model.PlayerState) {
	b.send(EventPlayerState, response.PlayerStateFromModel(state))
}

// SettingsChanged broadcasts the new settings record
func (b *Broadcaster) SettingsChanged(settings model.Settings) {
	b.send(EventSettings, response.SettingsFromModel(settings))
}

// ApplyTheme tells views to switch between dark and light themes
func (b *Broadcaster) ApplyTheme(darkMode bool) {
	b.send(EventTheme, response.ThemeFromDarkMode(darkMode))
}

func (b *Broadcaster) send(event string, payload any) {
	message, err := Message(event, payload)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	b.hub.Broadcast(message)
}

// Message encodes payload as JSON and frames it as an SSE event
func Message(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", event, err)
	}
	return formatSSEMessage(event, string(data)), nil
}
