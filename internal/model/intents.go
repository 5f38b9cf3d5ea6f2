package model

// IntentType names a user intent dispatched by a view
type IntentType string

const (
	IntentTogglePlay         IntentType = "togglePlay"
	IntentToggleMute         IntentType = "toggleMute"
	IntentSetVolumeFromInput IntentType = "setVolumeFromInput"
	IntentSeek               IntentType = "seek"
	IntentToggleShuffle      IntentType = "toggleShuffle"
	IntentToggleRepeat       IntentType = "toggleRepeat"
	IntentToggleFavorite     IntentType = "toggleFavorite"
	IntentSkipPrevious       IntentType = "skipPrevious"
	IntentSkipNext           IntentType = "skipNext"
	IntentCycleVisualizer    IntentType = "cycleVisualizer"
)

// Intent is a user action forwarded by a view. Value carries the volume
// percent (0-100) for setVolumeFromInput and the fraction (0-1) for seek.
type Intent struct {
	Type  IntentType
	Value float64
}
