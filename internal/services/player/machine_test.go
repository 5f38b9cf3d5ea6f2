package player

import (
	"context"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/resonance/internal/model"
	"github.com/mcoot/resonance/internal/services/settings"
	"github.com/mcoot/resonance/internal/storage"
	"github.com/mcoot/resonance/internal/storage/memory"
	"github.com/mcoot/resonance/internal/testutil"
)

type MachineSuite struct {
	suite.Suite
	storage  *testutil.FlakyStorage
	settings *settings.Store
	machine  *Machine
	ctx      context.Context
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = testutil.NewFlakyStorage(memory.New())
	s.settings = settings.New(s.storage, nil, testutil.NopLogger())
	s.settings.Load(s.ctx)
	s.machine = New(s.storage, s.settings, model.DefaultTrack(), testutil.NopLogger())
}

// loadSnapshot stores raw snapshot JSON and reloads the machine from it
func (s *MachineSuite) loadSnapshot(raw string) model.PlayerState {
	s.Require().NoError(s.storage.Set(s.ctx, storage.PlayerStateKey, raw))
	return s.machine.Load(s.ctx)
}

// reload simulates a page reload: a fresh machine over the same storage
func (s *MachineSuite) reload() model.PlayerState {
	s.machine = New(s.storage, s.settings, model.DefaultTrack(), testutil.NopLogger())
	return s.machine.Load(s.ctx)
}

// Load tests

func (s *MachineSuite) TestLoadDefaults() {
	state := s.machine.Load(s.ctx)

	s.False(state.IsPlaying)
	s.Equal(0, state.Position)
	s.Equal(model.DefaultVolume, state.Volume)
	s.Equal(model.DefaultVolume, state.PreMuteVolume)
	s.False(state.IsMuted)
	s.Equal(model.VisualizerLottie, state.Visualizer)
	s.Equal(model.DefaultTrack(), state.Track)
}

func (s *MachineSuite) TestLoadOverlaysPartialSnapshot() {
	state := s.loadSnapshot(`{"isPlaying":true,"progress":42,"isRepeatOn":true}`)

	s.True(state.IsPlaying)
	s.Equal(42, state.Position)
	s.True(state.IsRepeatOn)
	s.False(state.IsShuffleOn)
	s.Equal(model.VisualizerLottie, state.Visualizer)
	s.Equal(model.DefaultVolume, state.Volume)
}

func (s *MachineSuite) TestLoadClampsOutOfRangeValues() {
	state := s.loadSnapshot(`{"progress":9999,"volume":-20,"previousVolume":400,"visualizerType":"spiral"}`)

	s.Equal(213, state.Position)
	s.Equal(model.VisualizerLottie, state.Visualizer)
	s.GreaterOrEqual(state.Volume, 0)
	s.LessOrEqual(state.PreMuteVolume, 100)
}

func (s *MachineSuite) TestLoadCorruptSnapshotUsesDefaults() {
	state := s.loadSnapshot(`not json`)

	s.False(state.IsPlaying)
	s.Equal(0, state.Position)
	s.Equal(model.DefaultVolume, state.Volume)
}

func (s *MachineSuite) TestLoadStorageFailureUsesDefaults() {
	s.storage.FailGet = true

	state := s.machine.Load(s.ctx)
	s.Equal(model.DefaultVolume, state.Volume)
	s.Equal(model.VisualizerLottie, state.Visualizer)
}

func (s *MachineSuite) TestLoadReconcilesVolumeWithSettings() {
	s.settings.Update(s.ctx, model.SettingsPatch{Volume: lo.ToPtr(30)})

	state := s.loadSnapshot(`{"volume":70,"isMuted":false}`)
	s.Equal(30, state.Volume)
}

func (s *MachineSuite) TestLoadMutedReconcilesPreMuteVolume() {
	s.settings.Update(s.ctx, model.SettingsPatch{Volume: lo.ToPtr(30)})

	state := s.loadSnapshot(`{"volume":0,"isMuted":true,"previousVolume":70}`)
	s.True(state.IsMuted)
	s.Equal(0, state.Volume)
	s.Equal(30, state.PreMuteVolume)
}

func (s *MachineSuite) TestLoadDoesNotFollowLaterSettingsChanges() {
	s.machine.Load(s.ctx)

	s.settings.Update(s.ctx, model.SettingsPatch{Volume: lo.ToPtr(10)})
	s.Equal(model.DefaultVolume, s.machine.State().Volume)
}

// Persistence tests

func (s *MachineSuite) TestPersistenceRoundTrip() {
	s.machine.Load(s.ctx)
	s.machine.TogglePlay(s.ctx)
	s.machine.Seek(s.ctx, 0.5)
	s.machine.SetVolumeFromInput(s.ctx, 64)
	s.machine.ToggleMute(s.ctx)
	s.machine.ToggleShuffle(s.ctx)
	s.machine.ToggleFavorite(s.ctx)
	s.machine.CycleVisualizer(s.ctx)
	before := s.machine.State()
	rawBefore, err := s.storage.Get(s.ctx, storage.PlayerStateKey)
	s.Require().NoError(err)

	after := s.reload()
	s.Equal(before, after)

	// the reloaded session persists the same snapshot on its next write
	s.machine.ToggleRepeat(s.ctx)
	s.machine.ToggleRepeat(s.ctx)
	rawAfter, err := s.storage.Get(s.ctx, storage.PlayerStateKey)
	s.Require().NoError(err)
	s.JSONEq(rawBefore, rawAfter)
}

func (s *MachineSuite) TestSnapshotUsesPersistedFieldNames() {
	s.machine.Load(s.ctx)
	s.machine.TogglePlay(s.ctx)

	raw, err := s.storage.Get(s.ctx, storage.PlayerStateKey)
	s.Require().NoError(err)
	s.JSONEq(`{
		"isPlaying": true,
		"progress": 0,
		"volume": 80,
		"isMuted": false,
		"isFavorite": false,
		"isShuffleOn": false,
		"isRepeatOn": false,
		"visualizerType": "lottie",
		"previousVolume": 80
	}`, raw)
}

func (s *MachineSuite) TestPersistFailureKeepsState() {
	s.machine.Load(s.ctx)
	s.storage.FailSet = true

	state := s.machine.TogglePlay(s.ctx)
	s.True(state.IsPlaying)
	s.True(s.machine.State().IsPlaying)
}

// Mute tests

func (s *MachineSuite) TestMuteRoundTripRestoresEveryVolume() {
	s.machine.Load(s.ctx)

	for v := 0; v <= 100; v++ {
		s.machine.SetVolumeFromInput(s.ctx, v)

		muted := s.machine.ToggleMute(s.ctx)
		s.True(muted.IsMuted, "volume %d", v)
		s.Equal(0, muted.Volume, "volume %d", v)

		unmuted := s.machine.ToggleMute(s.ctx)
		s.False(unmuted.IsMuted, "volume %d", v)
		s.Equal(v, unmuted.Volume, "volume %d", v)
	}
}

func (s *MachineSuite) TestExplicitZeroThenMute() {
	s.machine.Load(s.ctx)
	s.machine.SetVolumeFromInput(s.ctx, 50)

	zero := s.machine.SetVolumeFromInput(s.ctx, 0)
	s.False(zero.IsMuted)
	s.Equal(0, zero.Volume)

	muted := s.machine.ToggleMute(s.ctx)
	s.True(muted.IsMuted)
	s.Equal(0, muted.PreMuteVolume)

	unmuted := s.machine.ToggleMute(s.ctx)
	s.False(unmuted.IsMuted)
	s.Equal(0, unmuted.Volume)
}

func (s *MachineSuite) TestVolumeInputWhileMutedUnmutes() {
	s.machine.Load(s.ctx)
	s.machine.ToggleMute(s.ctx)

	state := s.machine.SetVolumeFromInput(s.ctx, 35)
	s.False(state.IsMuted)
	s.Equal(35, state.Volume)
	s.Equal(35, state.PreMuteVolume)
}

func (s *MachineSuite) TestZeroInputWhileMutedStaysMuted() {
	s.machine.Load(s.ctx)
	s.machine.ToggleMute(s.ctx)

	state := s.machine.SetVolumeFromInput(s.ctx, 0)
	s.True(state.IsMuted)
	s.Equal(model.DefaultVolume, state.PreMuteVolume)
	s.Equal(model.DefaultVolume, s.settings.Get().Volume)
}

func (s *MachineSuite) TestVolumeInputIsClamped() {
	s.machine.Load(s.ctx)

	s.Equal(100, s.machine.SetVolumeFromInput(s.ctx, 140).Volume)
	s.Equal(0, s.machine.SetVolumeFromInput(s.ctx, -5).Volume)
}

// Settings sync tests

func (s *MachineSuite) TestVolumeInputSyncsSettings() {
	s.machine.Load(s.ctx)

	s.machine.SetVolumeFromInput(s.ctx, 45)
	s.Equal(45, s.settings.Get().Volume)
}

func (s *MachineSuite) TestMuteNeverWritesZeroToSettings() {
	s.machine.Load(s.ctx)
	s.machine.SetVolumeFromInput(s.ctx, 60)

	s.machine.ToggleMute(s.ctx)
	s.Equal(60, s.settings.Get().Volume)
	s.machine.ToggleMute(s.ctx)
	s.Equal(60, s.settings.Get().Volume)
}

func (s *MachineSuite) TestUnchangedVolumeSkipsSettingsWrite() {
	s.machine.Load(s.ctx)
	var updates int
	s.settings.Subscribe(func(model.Settings) { updates++ })

	s.machine.SetVolumeFromInput(s.ctx, model.DefaultVolume)
	s.Equal(0, updates)
}

func (s *MachineSuite) TestConcurrentVolumeInputsKeepSettingsInStep() {
	s.machine.Load(s.ctx)

	var wg sync.WaitGroup
	for v := 1; v <= 50; v++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.machine.SetVolumeFromInput(s.ctx, v)
		}(v)
	}
	wg.Wait()

	s.Equal(s.machine.State().Volume, s.settings.Get().Volume)
}

// Seek tests

func (s *MachineSuite) TestSeekRoundsToNearestSecond() {
	s.machine.Load(s.ctx)

	for _, fraction := range []float64{0, 0.001, 0.25, 0.5, 0.333, 0.999, 1} {
		state := s.machine.Seek(s.ctx, fraction)
		expected := int(fraction*213 + 0.5)
		s.Equal(expected, state.Position, "fraction %v", fraction)
		s.GreaterOrEqual(state.Position, 0)
		s.LessOrEqual(state.Position, 213)
	}
}

func (s *MachineSuite) TestSeekClampsFraction() {
	s.machine.Load(s.ctx)

	s.Equal(213, s.machine.Seek(s.ctx, 1.7).Position)
	s.Equal(0, s.machine.Seek(s.ctx, -0.3).Position)
}

// Tick tests

func (s *MachineSuite) TestTickWhilePausedDoesNothing() {
	s.machine.Load(s.ctx)
	sets := s.storage.Sets

	state := s.machine.Tick(s.ctx)
	s.Equal(0, state.Position)
	s.Equal(sets, s.storage.Sets)
}

func (s *MachineSuite) TestTickAdvancesOneSecond() {
	s.machine.Load(s.ctx)
	s.machine.TogglePlay(s.ctx)

	s.Equal(1, s.machine.Tick(s.ctx).Position)
	s.Equal(2, s.machine.Tick(s.ctx).Position)
}

func (s *MachineSuite) TestTickToEndStopsPlayback() {
	s.loadSnapshot(`{"isPlaying":true,"progress":210,"isRepeatOn":false}`)

	for i := 0; i < 2; i++ {
		state := s.machine.Tick(s.ctx)
		s.True(state.IsPlaying)
	}
	state := s.machine.Tick(s.ctx)
	s.False(state.IsPlaying)
	s.Equal(0, state.Position)
}

func (s *MachineSuite) TestTickToEndFromAnyPosition() {
	for _, p := range []int{0, 1, 100, 212} {
		s.SetupTest()
		s.loadSnapshot(`{"isPlaying":true,"isRepeatOn":false}`)
		s.machine.Seek(s.ctx, float64(p)/213)
		s.Require().Equal(p, s.machine.State().Position)

		var state model.PlayerState
		for i := 0; i < 213-p; i++ {
			state = s.machine.Tick(s.ctx)
		}
		s.False(state.IsPlaying, "start %d", p)
		s.Equal(0, state.Position, "start %d", p)
	}
}

func (s *MachineSuite) TestTickWithRepeatKeepsPlaying() {
	s.loadSnapshot(`{"isPlaying":true,"progress":210,"isRepeatOn":true}`)

	var state model.PlayerState
	for i := 0; i < 3; i++ {
		state = s.machine.Tick(s.ctx)
	}
	s.True(state.IsPlaying)
	s.Equal(0, state.Position)

	s.Equal(1, s.machine.Tick(s.ctx).Position)
}

// Other transitions

func (s *MachineSuite) TestSkipRestartsAndResumes() {
	s.loadSnapshot(`{"isPlaying":false,"progress":120}`)

	state := s.machine.SkipNext(s.ctx)
	s.Equal(0, state.Position)
	s.True(state.IsPlaying)

	s.machine.Seek(s.ctx, 0.5)
	state = s.machine.SkipPrevious(s.ctx)
	s.Equal(0, state.Position)
	s.True(state.IsPlaying)
}

func (s *MachineSuite) TestCycleVisualizer() {
	s.machine.Load(s.ctx)

	s.Equal(model.VisualizerAnimated, s.machine.CycleVisualizer(s.ctx).Visualizer)
	s.Equal(model.VisualizerBars, s.machine.CycleVisualizer(s.ctx).Visualizer)
	s.Equal(model.VisualizerLottie, s.machine.CycleVisualizer(s.ctx).Visualizer)
}

func (s *MachineSuite) TestToggles() {
	s.machine.Load(s.ctx)

	s.True(s.machine.ToggleShuffle(s.ctx).IsShuffleOn)
	s.True(s.machine.ToggleRepeat(s.ctx).IsRepeatOn)
	s.True(s.machine.ToggleFavorite(s.ctx).IsFavorite)
	s.True(s.machine.TogglePlay(s.ctx).IsPlaying)

	s.False(s.machine.ToggleShuffle(s.ctx).IsShuffleOn)
	s.False(s.machine.ToggleRepeat(s.ctx).IsRepeatOn)
	s.False(s.machine.ToggleFavorite(s.ctx).IsFavorite)
	s.False(s.machine.TogglePlay(s.ctx).IsPlaying)
}

// Dispatch tests

func (s *MachineSuite) TestDispatchMapsIntents() {
	s.machine.Load(s.ctx)

	state, err := s.machine.Dispatch(s.ctx, model.Intent{Type: model.IntentSetVolumeFromInput, Value: 33.6})
	s.Require().NoError(err)
	s.Equal(34, state.Volume)

	state, err = s.machine.Dispatch(s.ctx, model.Intent{Type: model.IntentSeek, Value: 0.5})
	s.Require().NoError(err)
	s.Equal(107, state.Position)

	state, err = s.machine.Dispatch(s.ctx, model.Intent{Type: model.IntentTogglePlay})
	s.Require().NoError(err)
	s.True(state.IsPlaying)

	state, err = s.machine.Dispatch(s.ctx, model.Intent{Type: model.IntentCycleVisualizer})
	s.Require().NoError(err)
	s.Equal(model.VisualizerAnimated, state.Visualizer)
}

func (s *MachineSuite) TestDispatchUnknownIntent() {
	s.machine.Load(s.ctx)

	_, err := s.machine.Dispatch(s.ctx, model.Intent{Type: "rewind"})
	s.ErrorIs(err, model.ErrUnknownIntent)
}

// Subscription tests

func (s *MachineSuite) TestSubscribersNotifiedInOrder() {
	s.machine.Load(s.ctx)
	var calls []string
	s.machine.Subscribe(func(model.PlayerState) { calls = append(calls, "first") })
	s.machine.Subscribe(func(model.PlayerState) { calls = append(calls, "second") })

	s.machine.TogglePlay(s.ctx)
	s.Equal([]string{"first", "second"}, calls)
}

func (s *MachineSuite) TestSubscriberSeesCommittedState() {
	s.machine.Load(s.ctx)
	var seen []model.PlayerState
	s.machine.Subscribe(func(state model.PlayerState) { seen = append(seen, state) })

	s.machine.TogglePlay(s.ctx)
	s.machine.Tick(s.ctx)

	s.Require().Len(seen, 2)
	s.True(seen[0].IsPlaying)
	s.Equal(1, seen[1].Position)
}

func (s *MachineSuite) TestUnsubscribe() {
	s.machine.Load(s.ctx)
	var calls int
	unsubscribe := s.machine.Subscribe(func(model.PlayerState) { calls++ })

	s.machine.TogglePlay(s.ctx)
	unsubscribe()
	s.machine.TogglePlay(s.ctx)

	s.Equal(1, calls)
}

func (s *MachineSuite) TestLoadNotifiesSubscribers() {
	var seen []model.PlayerState
	s.machine.Subscribe(func(state model.PlayerState) { seen = append(seen, state) })

	s.loadSnapshot(`{"isPlaying":true}`)
	s.Require().Len(seen, 1)
	s.True(seen[0].IsPlaying)
}
