package factory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/resonance/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

// tick delivers one progress tick and waits for the machine to apply it
func (s *IntegrationSuite) tick(expectedPosition int) {
	s.app.MockClock.Tick()
	s.Eventually(func() bool {
		return s.app.PlayerMachine.State().Position == expectedPosition
	}, time.Second, time.Millisecond)
}

// Test: a fresh app starts from defaults with the clock idle
func (s *IntegrationSuite) TestFreshAppDefaults() {
	s.Equal(model.DefaultSettings(), s.app.SettingsStore.Get())

	state := s.app.PlayerMachine.State()
	s.False(state.IsPlaying)
	s.Equal(model.DefaultVolume, state.Volume)
	s.False(s.app.ProgressClock.Running())
}

// Test: naming the device and resolving it again
func (s *IntegrationSuite) TestIdentityFlow() {
	_, ok := s.app.IdentityService.Resolve(s.ctx)
	s.False(ok)

	committed, err := s.app.IdentityService.Commit(s.ctx, "  Ada  ")
	s.Require().NoError(err)
	s.Equal("Ada", committed.DisplayName)
	s.Equal(TestDeviceID, committed.DeviceID)

	resolved, ok := s.app.IdentityService.Resolve(s.ctx)
	s.Require().True(ok)
	s.Equal(committed.DisplayName, resolved.DisplayName)
	s.True(committed.CreatedAt.Equal(resolved.CreatedAt))
}

// Test: identity without a fingerprint round-trips through the placeholder id
func (s *IntegrationSuite) TestIdentityWithoutFingerprint() {
	s.app.MockFingerprinter.Fail(errors.New("no traits"))

	_, ok := s.app.IdentityService.Resolve(s.ctx)
	s.False(ok)

	committed, err := s.app.IdentityService.Commit(s.ctx, "Guest")
	s.Require().NoError(err)
	s.Equal(model.UnknownDeviceID, committed.DeviceID)

	resolved, ok := s.app.IdentityService.Resolve(s.ctx)
	s.Require().True(ok)
	s.Equal(model.UnknownDeviceID, resolved.DeviceID)
	s.Equal("Guest", resolved.DisplayName)
}

// Test: playing starts the progress clock and ticks advance the position
func (s *IntegrationSuite) TestPlaybackDrivesProgressClock() {
	s.app.PlayerMachine.TogglePlay(s.ctx)
	s.True(s.app.ProgressClock.Running())

	s.tick(1)
	s.tick(2)

	s.app.PlayerMachine.TogglePlay(s.ctx)
	s.False(s.app.ProgressClock.Running())
	s.Equal(0, s.app.MockClock.ActiveTickers())
}

// Test: reaching the end of the track stops playback and the clock
func (s *IntegrationSuite) TestTrackEndStopsClock() {
	s.app.PlayerMachine.Seek(s.ctx, 210.0/213.0)
	s.app.PlayerMachine.TogglePlay(s.ctx)

	s.tick(211)
	s.tick(212)
	s.tick(0)

	s.Eventually(func() bool {
		return !s.app.ProgressClock.Running()
	}, time.Second, time.Millisecond)
	s.False(s.app.PlayerMachine.State().IsPlaying)
	s.Equal(0, s.app.MockClock.ActiveTickers())
}

// Test: with repeat on the clock keeps running past the end of the track
func (s *IntegrationSuite) TestRepeatKeepsClockRunning() {
	s.app.PlayerMachine.ToggleRepeat(s.ctx)
	s.app.PlayerMachine.Seek(s.ctx, 212.0/213.0)
	s.app.PlayerMachine.TogglePlay(s.ctx)

	s.tick(0)
	s.tick(1)

	s.True(s.app.ProgressClock.Running())
	s.True(s.app.PlayerMachine.State().IsPlaying)
}

// Test: only one ticker exists however often play is toggled
func (s *IntegrationSuite) TestSingleTicker() {
	for i := 0; i < 5; i++ {
		s.app.PlayerMachine.TogglePlay(s.ctx)
		s.app.PlayerMachine.SkipNext(s.ctx)
		s.LessOrEqual(s.app.MockClock.ActiveTickers(), 1)
	}
}

// Test: volume changes flow into settings, mute does not
func (s *IntegrationSuite) TestVolumeSync() {
	s.app.PlayerMachine.SetVolumeFromInput(s.ctx, 42)
	s.Equal(42, s.app.SettingsStore.Get().Volume)

	s.app.PlayerMachine.ToggleMute(s.ctx)
	s.Equal(42, s.app.SettingsStore.Get().Volume)
}

// Test: a restart restores settings and the session, resuming playback
func (s *IntegrationSuite) TestRestartRestoresSession() {
	s.app.SettingsStore.Update(s.ctx, model.SettingsPatch{DarkMode: lo.ToPtr(false)})
	s.app.PlayerMachine.SetVolumeFromInput(s.ctx, 55)
	s.app.PlayerMachine.ToggleFavorite(s.ctx)
	s.app.PlayerMachine.CycleVisualizer(s.ctx)
	s.app.PlayerMachine.TogglePlay(s.ctx)
	before := s.app.PlayerMachine.State()
	s.Require().NoError(s.app.Close())

	restarted := NewTestAppWithStorage(s.app.Storage)
	s.app = restarted

	s.False(restarted.SettingsStore.Get().DarkMode)
	s.Equal(before, restarted.PlayerMachine.State())
	s.True(restarted.ProgressClock.Running())
}

// Test: closing the app stops the clock
func (s *IntegrationSuite) TestCloseStopsClock() {
	s.app.PlayerMachine.TogglePlay(s.ctx)
	s.Require().True(s.app.ProgressClock.Running())

	s.Require().NoError(s.app.Close())
	s.False(s.app.ProgressClock.Running())
	s.Equal(0, s.app.MockClock.ActiveTickers())
}
