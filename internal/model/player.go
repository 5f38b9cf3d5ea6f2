package model

// VisualizerType selects the visualizer a view renders while playing
type VisualizerType string

const (
	VisualizerBars     VisualizerType = "bars"
	VisualizerLottie   VisualizerType = "lottie"
	VisualizerAnimated VisualizerType = "animated"

	DefaultVisualizer = VisualizerLottie
)

// VisualizerCycle is the order in which CycleVisualizer advances
var VisualizerCycle = []VisualizerType{VisualizerBars, VisualizerLottie, VisualizerAnimated}

// Valid reports whether v is one of the known visualizer types
func (v VisualizerType) Valid() bool {
	for _, known := range VisualizerCycle {
		if v == known {
			return true
		}
	}
	return false
}

// Track describes the simulated "now playing" track
type Track struct {
	Title    string
	Artist   string
	Duration int // seconds
}

// DefaultTrack returns the placeholder track shown by the player
func DefaultTrack() Track {
	return Track{
		Title:    "Midnight Serenade",
		Artist:   "Luna Echo",
		Duration: 213,
	}
}

// PlayerState is the transient playback configuration of the shared session
type PlayerState struct {
	IsPlaying     bool
	Position      int // seconds, 0 <= Position <= Track.Duration
	Volume        int
	IsMuted       bool
	PreMuteVolume int
	IsFavorite    bool
	IsShuffleOn   bool
	IsRepeatOn    bool
	Visualizer    VisualizerType
	Track         Track
}

// IntendedVolume is the volume the user wants when audible. While muted this
// is the volume that unmuting restores.
func (s PlayerState) IntendedVolume() int {
	if s.IsMuted {
		return s.PreMuteVolume
	}
	return s.Volume
}

// Progress returns the playback position as a fraction of the track duration
func (s PlayerState) Progress() float64 {
	if s.Track.Duration <= 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Track.Duration)
}
