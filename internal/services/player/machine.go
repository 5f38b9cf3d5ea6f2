package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/resonance/internal/model"
	"github.com/mcoot/resonance/internal/storage"
)

// SettingsStore is the part of the settings store the machine reads its
// initial volume from and pushes volume changes into
type SettingsStore interface {
	Get() model.Settings
	Update(ctx context.Context, patch model.SettingsPatch) model.Settings
}

// Listener is called synchronously after each committed transition
type Listener func(model.PlayerState)

// Machine owns the shared playback session. Every transition mutates the
// state, persists a snapshot and then notifies subscribers.
type Machine struct {
	storage  storage.Storage
	settings SettingsStore
	track    model.Track
	logger   *slog.Logger

	mu       sync.Mutex
	state    model.PlayerState
	nextID   int
	watchers map[int]Listener

	// serializes notifications so listeners observe commits in order
	notifyMu sync.Mutex
}

// New creates a Machine for track. The state starts from defaults seeded
// with the current settings volume; call Load to restore a saved session.
func New(storage storage.Storage, settings SettingsStore, track model.Track, logger *slog.Logger) *Machine {
	m := &Machine{
		storage:  storage,
		settings: settings,
		track:    track,
		logger:   logger.With(slog.String("component", "player")),
		watchers: make(map[int]Listener),
	}
	m.state = m.defaults()
	return m
}

func (m *Machine) defaults() model.PlayerState {
	volume := lo.Clamp(m.settings.Get().Volume, model.MinVolume, model.MaxVolume)
	return model.PlayerState{
		Volume:        volume,
		PreMuteVolume: volume,
		Visualizer:    model.DefaultVisualizer,
		Track:         m.track,
	}
}

// Load restores the persisted snapshot over the defaults, then reconciles the
// intended volume with the settings volume. Later settings changes are not
// observed.
func (m *Machine) Load(ctx context.Context) model.PlayerState {
	m.mu.Lock()
	state := m.defaults()

	data, err := m.storage.Get(ctx, storage.PlayerStateKey)
	switch {
	case errors.Is(err, model.ErrEntryNotFound):
	case err != nil:
		m.logger.Warn("failed to read player state, using defaults",
			slog.String("error", err.Error()))
	default:
		snap, err := decodeSnapshot([]byte(data))
		if err != nil {
			m.logger.Warn("corrupt player state, using defaults",
				slog.String("error", err.Error()))
		} else {
			state = snap.overlay(state)
		}
	}

	state = m.normalize(state)
	settingsVolume := lo.Clamp(m.settings.Get().Volume, model.MinVolume, model.MaxVolume)
	if state.IntendedVolume() != settingsVolume {
		if state.IsMuted {
			state.PreMuteVolume = settingsVolume
		} else {
			state.Volume = settingsVolume
		}
	}
	m.state = state
	listeners := m.listenersLocked()
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	m.logger.Info("player state loaded",
		slog.Bool("is_playing", state.IsPlaying),
		slog.Int("position", state.Position),
		slog.Int("volume", state.Volume),
		slog.Bool("is_muted", state.IsMuted))

	for _, l := range listeners {
		l(state)
	}
	return state
}

func (m *Machine) normalize(s model.PlayerState) model.PlayerState {
	s.Track = m.track
	s.Position = lo.Clamp(s.Position, 0, max(m.track.Duration, 0))
	s.Volume = lo.Clamp(s.Volume, model.MinVolume, model.MaxVolume)
	s.PreMuteVolume = lo.Clamp(s.PreMuteVolume, model.MinVolume, model.MaxVolume)
	if s.IsMuted {
		s.Volume = 0
	}
	if !s.Visualizer.Valid() {
		s.Visualizer = model.DefaultVisualizer
	}
	return s
}

// State returns a copy of the current state
func (m *Machine) State() model.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers l for change notifications and returns a function that
// removes it. Listeners must not call back into the machine's transitions.
func (m *Machine) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

func (m *Machine) listenersLocked() []Listener {
	ids := lo.Keys(m.watchers)
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.watchers[id])
	}
	return out
}

// apply runs mutate under the lock. When mutate reports a change the new
// state is persisted and subscribers are notified.
func (m *Machine) apply(ctx context.Context, name string, mutate func(*model.PlayerState) bool) model.PlayerState {
	return m.applyThen(ctx, name, mutate, nil)
}

// applyThen is apply with a follow-up that runs before subscribers are
// notified. Follow-ups run in commit order.
func (m *Machine) applyThen(ctx context.Context, name string, mutate func(*model.PlayerState) bool, then func(model.PlayerState)) model.PlayerState {
	m.mu.Lock()
	next := m.state
	if !mutate(&next) {
		m.mu.Unlock()
		return next
	}
	m.state = next
	m.persist(ctx, next)
	listeners := m.listenersLocked()
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	m.logger.Debug("player transition",
		slog.String("transition", name),
		slog.Bool("is_playing", next.IsPlaying),
		slog.Int("position", next.Position),
		slog.Int("volume", next.Volume),
		slog.Bool("is_muted", next.IsMuted))

	if then != nil {
		then(next)
	}
	for _, l := range listeners {
		l(next)
	}
	return next
}

func (m *Machine) persist(ctx context.Context, s model.PlayerState) {
	data, err := encodeSnapshot(s)
	if err != nil {
		m.logger.Error("failed to encode player state", slog.String("error", err.Error()))
		return
	}
	if err := m.storage.Set(ctx, storage.PlayerStateKey, string(data)); err != nil {
		m.logger.Warn("failed to persist player state",
			slog.String("error", err.Error()))
	}
}

// TogglePlay flips between playing and paused
func (m *Machine) TogglePlay(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "toggle_play", func(s *model.PlayerState) bool {
		s.IsPlaying = !s.IsPlaying
		return true
	})
}

// ToggleMute mutes by saving the current volume and dropping output to 0, or
// unmutes by restoring the saved volume
func (m *Machine) ToggleMute(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "toggle_mute", func(s *model.PlayerState) bool {
		if s.IsMuted {
			s.IsMuted = false
			s.Volume = s.PreMuteVolume
		} else {
			s.PreMuteVolume = s.Volume
			s.Volume = 0
			s.IsMuted = true
		}
		return true
	})
}

// SetVolumeFromInput sets the volume from a volume-bar interaction. A
// positive volume while muted also unmutes. The unmuted volume is pushed into
// the settings store in commit order.
func (m *Machine) SetVolumeFromInput(ctx context.Context, percent int) model.PlayerState {
	return m.applyThen(ctx, "set_volume", func(s *model.PlayerState) bool {
		v := lo.Clamp(percent, model.MinVolume, model.MaxVolume)
		s.Volume = v
		if v > 0 && s.IsMuted {
			s.IsMuted = false
			s.PreMuteVolume = v
		}
		return true
	}, func(next model.PlayerState) {
		if !next.IsMuted && m.settings.Get().Volume != next.Volume {
			m.settings.Update(ctx, model.SettingsPatch{Volume: lo.ToPtr(next.Volume)})
		}
	})
}

// Seek moves the position to fraction of the track, rounded to the nearest
// second
func (m *Machine) Seek(ctx context.Context, fraction float64) model.PlayerState {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	return m.apply(ctx, "seek", func(s *model.PlayerState) bool {
		f := lo.Clamp(fraction, 0, 1)
		s.Position = int(math.Round(f * float64(s.Track.Duration)))
		return true
	})
}

// ToggleShuffle flips shuffle
func (m *Machine) ToggleShuffle(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "toggle_shuffle", func(s *model.PlayerState) bool {
		s.IsShuffleOn = !s.IsShuffleOn
		return true
	})
}

// ToggleRepeat flips repeat
func (m *Machine) ToggleRepeat(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "toggle_repeat", func(s *model.PlayerState) bool {
		s.IsRepeatOn = !s.IsRepeatOn
		return true
	})
}

// ToggleFavorite flips the favorite mark on the current track
func (m *Machine) ToggleFavorite(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "toggle_favorite", func(s *model.PlayerState) bool {
		s.IsFavorite = !s.IsFavorite
		return true
	})
}

// SkipPrevious restarts the track and resumes playback
func (m *Machine) SkipPrevious(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "skip_previous", restart)
}

// SkipNext restarts the track and resumes playback. There is only one track.
func (m *Machine) SkipNext(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "skip_next", restart)
}

func restart(s *model.PlayerState) bool {
	s.Position = 0
	s.IsPlaying = true
	return true
}

// CycleVisualizer advances bars -> lottie -> animated -> bars
func (m *Machine) CycleVisualizer(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "cycle_visualizer", func(s *model.PlayerState) bool {
		idx := lo.IndexOf(model.VisualizerCycle, s.Visualizer)
		s.Visualizer = model.VisualizerCycle[(idx+1)%len(model.VisualizerCycle)]
		return true
	})
}

// Tick advances playback by one second. At the end of the track the position
// wraps to 0 and playback stops unless repeat is on. Ticks while paused do
// nothing.
func (m *Machine) Tick(ctx context.Context) model.PlayerState {
	return m.apply(ctx, "tick", func(s *model.PlayerState) bool {
		if !s.IsPlaying {
			return false
		}
		s.Position++
		if s.Position >= s.Track.Duration {
			s.Position = 0
			if !s.IsRepeatOn {
				s.IsPlaying = false
			}
		}
		return true
	})
}

// Dispatch applies a named intent from a view
func (m *Machine) Dispatch(ctx context.Context, intent model.Intent) (model.PlayerState, error) {
	switch intent.Type {
	case model.IntentTogglePlay:
		return m.TogglePlay(ctx), nil
	case model.IntentToggleMute:
		return m.ToggleMute(ctx), nil
	case model.IntentSetVolumeFromInput:
		return m.SetVolumeFromInput(ctx, roundPercent(intent.Value)), nil
	case model.IntentSeek:
		return m.Seek(ctx, intent.Value), nil
	case model.IntentToggleShuffle:
		return m.ToggleShuffle(ctx), nil
	case model.IntentToggleRepeat:
		return m.ToggleRepeat(ctx), nil
	case model.IntentToggleFavorite:
		return m.ToggleFavorite(ctx), nil
	case model.IntentSkipPrevious:
		return m.SkipPrevious(ctx), nil
	case model.IntentSkipNext:
		return m.SkipNext(ctx), nil
	case model.IntentCycleVisualizer:
		return m.CycleVisualizer(ctx), nil
	default:
		return model.PlayerState{}, fmt.Errorf("%w: %q", model.ErrUnknownIntent, intent.Type)
	}
}

func roundPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(lo.Clamp(v, model.MinVolume, model.MaxVolume)))
}
