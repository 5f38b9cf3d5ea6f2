package response

import (
	"time"

	"github.com/mcoot/resonance/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}

// Identity represents a device identity in API responses
type Identity struct {
	DeviceID    string    `json:"device_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdentityFromModel converts a model.Identity
func IdentityFromModel(i *model.Identity) Identity {
	return Identity{
		DeviceID:    string(i.DeviceID),
		DisplayName: i.DisplayName,
		CreatedAt:   i.CreatedAt,
	}
}

// IdentityResponse wraps an identity that may be absent
type IdentityResponse struct {
	Identity *Identity `json:"identity"`
}

// Settings represents the settings record
type Settings struct {
	DarkMode          bool `json:"dark_mode"`
	Volume            int  `json:"volume"`
	VisualizerEnabled bool `json:"visualizer_enabled"`
}

// SettingsFromModel converts model.Settings
func SettingsFromModel(s model.Settings) Settings {
	return Settings{
		DarkMode:          s.DarkMode,
		Volume:            s.Volume,
		VisualizerEnabled: s.VisualizerEnabled,
	}
}

// Theme is the theme a view should render
type Theme struct {
	DarkMode bool   `json:"dark_mode"`
	Theme    string `json:"theme"`
}

// ThemeFromDarkMode builds a Theme
func ThemeFromDarkMode(dark bool) Theme {
	if dark {
		return Theme{DarkMode: true, Theme: "dark"}
	}
	return Theme{DarkMode: false, Theme: "light"}
}

// Track represents the now-playing track
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
}

// PlayerState represents the playback session
type PlayerState struct {
	IsPlaying     bool    `json:"is_playing"`
	Position      int     `json:"position"`
	Progress      float64 `json:"progress"`
	Volume        int     `json:"volume"`
	IsMuted       bool    `json:"is_muted"`
	PreMuteVolume int     `json:"pre_mute_volume"`
	IsFavorite    bool    `json:"is_favorite"`
	IsShuffleOn   bool    `json:"is_shuffle_on"`
	IsRepeatOn    bool    `json:"is_repeat_on"`
	Visualizer    string  `json:"visualizer"`
	Track         Track   `json:"track"`
}

// PlayerStateFromModel converts model.PlayerState
func PlayerStateFromModel(s model.PlayerState) PlayerState {
	return PlayerState{
		IsPlaying:     s.IsPlaying,
		Position:      s.Position,
		Progress:      s.Progress(),
		Volume:        s.Volume,
		IsMuted:       s.IsMuted,
		PreMuteVolume: s.PreMuteVolume,
		IsFavorite:    s.IsFavorite,
		IsShuffleOn:   s.IsShuffleOn,
		IsRepeatOn:    s.IsRepeatOn,
		Visualizer:    string(s.Visualizer),
		Track: Track{
			Title:    s.Track.Title,
			Artist:   s.Track.Artist,
			Duration: s.Track.Duration,
		},
	}
}
