package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/resonance/internal/api"
	"github.com/mcoot/resonance/internal/factory"
)

type CLISuite struct {
	suite.Suite
	app    *factory.App
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := factory.New(factory.Config{Logger: logger})
	s.Require().NoError(err)
	s.app = app

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		IdentityService: app.IdentityService,
		SettingsStore:   app.SettingsStore,
		PlayerMachine:   app.PlayerMachine,
		Hub:             app.Hub,
	})
	mux := http.NewServeMux()
	mux.Handle("/api/", router)
	s.server = httptest.NewServer(mux)
}

func (s *CLISuite) TearDownTest() {
	_ = s.app.Close()
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	return s.runContext(context.Background(), args...)
}

func (s *CLISuite) runContext(ctx context.Context, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", s.server.URL}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func (s *CLISuite) runJSON(result any, args ...string) {
	out, err := s.run(append(args, "-o", "json")...)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal([]byte(out), result), out)
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Equal("Status: ok\n", out)
}

func (s *CLISuite) TestIdentityShowBeforeSet() {
	out, err := s.run("identity", "show")
	s.Require().NoError(err)
	s.Contains(out, "No identity for this device")

	var result IdentityResult
	s.runJSON(&result, "identity", "show")
	s.Nil(result.Identity)
}

func (s *CLISuite) TestIdentitySetThenShow() {
	var set IdentityResult
	s.runJSON(&set, "identity", "set", "--name", "Kai")
	s.Require().NotNil(set.Identity)
	s.Equal("Kai", set.Identity.DisplayName)
	s.Len(set.Identity.DeviceID, 32)

	var shown IdentityResult
	s.runJSON(&shown, "identity", "show")
	s.Require().NotNil(shown.Identity)
	s.Equal(set.Identity.DeviceID, shown.Identity.DeviceID)

	out, err := s.run("identity", "show")
	s.Require().NoError(err)
	s.Contains(out, "Name: Kai")
}

func (s *CLISuite) TestIdentitySetRequiresName() {
	_, err := s.run("identity", "set", "--name", "   ")
	s.Error(err)
}

func (s *CLISuite) TestSettingsShowDefaults() {
	out, err := s.run("settings", "show")
	s.Require().NoError(err)
	s.Equal("Dark mode: on\nVolume: 80\nVisualizer: on\n", out)
}

func (s *CLISuite) TestSettingsSetOnlyChangedFlags() {
	var result Settings
	s.runJSON(&result, "settings", "set", "--volume", "40")
	s.Equal(Settings{DarkMode: true, Volume: 40, VisualizerEnabled: true}, result)

	s.runJSON(&result, "settings", "set", "--dark-mode=false")
	s.Equal(Settings{DarkMode: false, Volume: 40, VisualizerEnabled: true}, result)
}

func (s *CLISuite) TestSettingsSetWithoutFlags() {
	_, err := s.run("settings", "set")
	s.Error(err)
}

func (s *CLISuite) TestSettingsReset() {
	_, err := s.run("settings", "set", "--volume", "5", "--visualizer=false")
	s.Require().NoError(err)

	var result Settings
	s.runJSON(&result, "settings", "reset")
	s.Equal(Settings{DarkMode: true, Volume: 80, VisualizerEnabled: true}, result)
}

func (s *CLISuite) TestPlayerStatus() {
	out, err := s.run("player", "status")
	s.Require().NoError(err)
	s.Contains(out, "Track: Midnight Serenade - Luna Echo")
	s.Contains(out, "State: paused")
	s.Contains(out, "Position: 0:00 / 3:33 (0%)")
	s.Contains(out, "Volume: 80")
	s.Contains(out, "Visualizer: lottie")
}

func (s *CLISuite) TestPlayerPlay() {
	var state PlayerState
	s.runJSON(&state, "player", "play")
	s.True(state.IsPlaying)

	s.runJSON(&state, "player", "play")
	s.False(state.IsPlaying)
}

func (s *CLISuite) TestPlayerSeek() {
	var state PlayerState
	s.runJSON(&state, "player", "seek", "0.25")
	s.Equal(53, state.Position)

	s.runJSON(&state, "player", "seek", "1:30")
	s.Equal(90, state.Position)
}

func (s *CLISuite) TestPlayerSeekInvalid() {
	_, err := s.run("player", "seek", "soon")
	s.Error(err)

	_, err = s.run("player", "seek", "1:75")
	s.Error(err)
}

func (s *CLISuite) TestPlayerVolumeAndMute() {
	var state PlayerState
	s.runJSON(&state, "player", "volume", "250")
	s.Equal(100, state.Volume)

	out, err := s.run("player", "mute")
	s.Require().NoError(err)
	s.Contains(out, "Volume: muted (restores to 100)")

	var settings Settings
	s.runJSON(&settings, "settings", "show")
	s.Equal(100, settings.Volume)
}

func (s *CLISuite) TestPlayerVolumeInvalid() {
	_, err := s.run("player", "volume", "loud")
	s.Error(err)
}

func (s *CLISuite) TestPlayerToggles() {
	var state PlayerState
	s.runJSON(&state, "player", "shuffle")
	s.True(state.IsShuffleOn)
	s.runJSON(&state, "player", "repeat")
	s.True(state.IsRepeatOn)
	s.runJSON(&state, "player", "favorite")
	s.True(state.IsFavorite)
	s.runJSON(&state, "player", "visualizer")
	s.Equal("animated", state.Visualizer)
}

func (s *CLISuite) TestPlayerSkip() {
	_, err := s.run("player", "seek", "0.5")
	s.Require().NoError(err)

	var state PlayerState
	s.runJSON(&state, "player", "next")
	s.True(state.IsPlaying)
	s.Equal(0, state.Position)
}

func (s *CLISuite) TestEventsStreamsSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := s.runContext(ctx, "events", "--json")
	s.Require().NoError(err)

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var evt SSEEvent
		s.Require().NoError(json.Unmarshal([]byte(line), &evt), line)
		names = append(names, evt.Event)
	}
	s.Equal([]string{"connected", "settings", "theme", "player-state"}, names)
}

func (s *CLISuite) TestServerError() {
	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--server", "http://127.0.0.1:1", "health"})
	s.Error(cmd.Execute())
}

func TestReadEvents(t *testing.T) {
	stream := "retry: 3000\n\n" +
		"event: settings\ndata: {\"volume\":80}\n\n" +
		": keepalive\n\n" +
		"event: note\ndata: line one\ndata: line two\n\n"

	type event struct{ name, data string }
	var got []event
	err := readEvents(strings.NewReader(stream), func(name, data string) {
		got = append(got, event{name, data})
	})
	require.NoError(t, err)
	assert.Equal(t, []event{
		{"settings", `{"volume":80}`},
		{"note", "line one\nline two"},
	}, got)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0:00", 0, false},
		{"1:30", 90, false},
		{"3:33", 213, false},
		{"1:60", 0, true},
		{"-1:00", 0, true},
		{"a:10", 0, true},
		{"1:", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0:00", formatSeconds(0))
	assert.Equal(t, "1:47", formatSeconds(107))
	assert.Equal(t, "3:33", formatSeconds(213))
	assert.Equal(t, "0:00", formatSeconds(-4))
}
