package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/resonance/internal/model"
	"github.com/mcoot/resonance/internal/storage"
)

// ThemeApplier makes the dark/light theme visible to views. It is a side
// effect separate from settings notifications.
type ThemeApplier interface {
	ApplyTheme(darkMode bool)
}

// ThemeApplierFunc adapts a function to ThemeApplier
type ThemeApplierFunc func(darkMode bool)

// ApplyTheme implements ThemeApplier
func (f ThemeApplierFunc) ApplyTheme(darkMode bool) { f(darkMode) }

// Listener is called synchronously after each committed change
type Listener func(model.Settings)

// record is the persisted form of the settings. Pointer fields let missing
// fields fall back to defaults individually.
type record struct {
	DarkMode          *bool `json:"darkMode,omitempty"`
	Volume            *int  `json:"volume,omitempty"`
	VisualizerEnabled *bool `json:"visualizerEnabled,omitempty"`
}

// Store holds the user settings and broadcasts every change
type Store struct {
	storage storage.Storage
	theme   ThemeApplier
	logger  *slog.Logger

	mu       sync.Mutex
	current  model.Settings
	nextID   int
	watchers map[int]Listener

	// serializes notifications so listeners observe commits in order
	notifyMu sync.Mutex
}

// New creates a Store holding default settings. Call Load to read the
// persisted record.
func New(storage storage.Storage, theme ThemeApplier, logger *slog.Logger) *Store {
	if theme == nil {
		theme = ThemeApplierFunc(func(bool) {})
	}
	return &Store{
		storage:  storage,
		theme:    theme,
		logger:   logger.With(slog.String("component", "settings")),
		current:  model.DefaultSettings(),
		watchers: make(map[int]Listener),
	}
}

// Load reads the persisted settings. Missing or corrupt data yields defaults.
func (s *Store) Load(ctx context.Context) model.Settings {
	s.mu.Lock()
	s.current = s.read(ctx)
	current := s.current
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.theme.ApplyTheme(current.DarkMode)
	return current
}

// Get returns the current settings
func (s *Store) Get() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update merges patch into the current settings, persists and notifies. The
// theme is applied once when the patch carries DarkMode.
func (s *Store) Update(ctx context.Context, patch model.SettingsPatch) model.Settings {
	s.mu.Lock()
	updated := normalize(patch.Apply(s.current))
	s.current = updated
	s.write(ctx, updated)
	listeners := s.listenersLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.logger.Debug("settings updated",
		slog.Bool("dark_mode", updated.DarkMode),
		slog.Int("volume", updated.Volume),
		slog.Bool("visualizer_enabled", updated.VisualizerEnabled))

	for _, l := range listeners {
		l(updated)
	}
	if patch.DarkMode != nil {
		s.theme.ApplyTheme(updated.DarkMode)
	}
	return updated
}

// Reset restores the defaults, persists, notifies and re-applies the theme
func (s *Store) Reset(ctx context.Context) model.Settings {
	s.mu.Lock()
	defaults := model.DefaultSettings()
	s.current = defaults
	s.write(ctx, defaults)
	listeners := s.listenersLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.logger.Info("settings reset to defaults")

	for _, l := range listeners {
		l(defaults)
	}
	s.theme.ApplyTheme(defaults.DarkMode)
	return defaults
}

// Subscribe registers l for change notifications and returns a function that
// removes it
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *Store) listenersLocked() []Listener {
	ids := lo.Keys(s.watchers)
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.watchers[id])
	}
	return out
}

func (s *Store) read(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()

	data, err := s.storage.Get(ctx, storage.SettingsKey)
	if err != nil {
		if !errors.Is(err, model.ErrEntryNotFound) {
			s.logger.Warn("failed to read settings, using defaults",
				slog.String("error", err.Error()))
		}
		return settings
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		s.logger.Warn("corrupt settings, using defaults",
			slog.String("error", err.Error()))
		return settings
	}

	return normalize(model.SettingsPatch{
		DarkMode:          rec.DarkMode,
		Volume:            rec.Volume,
		VisualizerEnabled: rec.VisualizerEnabled,
	}.Apply(settings))
}

func (s *Store) write(ctx context.Context, settings model.Settings) {
	data, err := json.Marshal(record{
		DarkMode:          &settings.DarkMode,
		Volume:            &settings.Volume,
		VisualizerEnabled: &settings.VisualizerEnabled,
	})
	if err != nil {
		s.logger.Error("failed to encode settings", slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Set(ctx, storage.SettingsKey, string(data)); err != nil {
		s.logger.Warn("failed to persist settings",
			slog.String("error", err.Error()))
	}
}

func normalize(s model.Settings) model.Settings {
	s.Volume = lo.Clamp(s.Volume, model.MinVolume, model.MaxVolume)
	return s
}
