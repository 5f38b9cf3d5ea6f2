package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case IdentityResult:
		o.printIdentityResult(v)
	case Settings:
		o.printSettings(v)
	case PlayerState:
		o.printPlayerState(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Identity response type (matches API)
type Identity struct {
	DeviceID    string    `json:"device_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdentityResult wraps an identity that may not have been committed yet
type IdentityResult struct {
	Identity *Identity `json:"identity"`
}

// Settings response type
type Settings struct {
	DarkMode          bool `json:"dark_mode"`
	Volume            int  `json:"volume"`
	VisualizerEnabled bool `json:"visualizer_enabled"`
}

// Track response type
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
}

// PlayerState response type
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

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentityResult(r IdentityResult) {
	if r.Identity == nil {
		_, _ = fmt.Fprintln(o.out, "No identity for this device. Set one with: resonance identity set --name <name>")
		return
	}
	_, _ = fmt.Fprintf(o.out, "Device: %s\n", r.Identity.DeviceID)
	_, _ = fmt.Fprintf(o.out, "Name: %s\n", r.Identity.DisplayName)
	_, _ = fmt.Fprintf(o.out, "Since: %s\n", r.Identity.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}

func (o *Output) printSettings(s Settings) {
	_, _ = fmt.Fprintf(o.out, "Dark mode: %s\n", onOff(s.DarkMode))
	_, _ = fmt.Fprintf(o.out, "Volume: %d\n", s.Volume)
	_, _ = fmt.Fprintf(o.out, "Visualizer: %s\n", onOff(s.VisualizerEnabled))
}

func (o *Output) printPlayerState(p PlayerState) {
	state := "paused"
	if p.IsPlaying {
		state = "playing"
	}
	_, _ = fmt.Fprintf(o.out, "Track: %s - %s\n", p.Track.Title, p.Track.Artist)
	_, _ = fmt.Fprintf(o.out, "State: %s\n", state)
	_, _ = fmt.Fprintf(o.out, "Position: %s / %s (%.0f%%)\n",
		formatSeconds(p.Position), formatSeconds(p.Track.Duration), p.Progress*100)
	if p.IsMuted {
		_, _ = fmt.Fprintf(o.out, "Volume: muted (restores to %d)\n", p.PreMuteVolume)
	} else {
		_, _ = fmt.Fprintf(o.out, "Volume: %d\n", p.Volume)
	}
	_, _ = fmt.Fprintf(o.out, "Shuffle: %s  Repeat: %s  Favorite: %s\n",
		onOff(p.IsShuffleOn), onOff(p.IsRepeatOn), yesNo(p.IsFavorite))
	_, _ = fmt.Fprintf(o.out, "Visualizer: %s\n", p.Visualizer)
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.out, "Status: %s\n", h.Status)
}

// formatSeconds renders whole seconds as m:ss
func formatSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
