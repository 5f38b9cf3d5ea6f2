package model

// Settings bounds and defaults
const (
	MinVolume = 0
	MaxVolume = 100

	DefaultDarkMode          = true
	DefaultVolume            = 80
	DefaultVisualizerEnabled = true
)

// Settings holds user-level preferences that outlive any playback session
type Settings struct {
	DarkMode          bool
	Volume            int
	VisualizerEnabled bool
}

// DefaultSettings returns a fully populated record with default values
func DefaultSettings() Settings {
	return Settings{
		DarkMode:          DefaultDarkMode,
		Volume:            DefaultVolume,
		VisualizerEnabled: DefaultVisualizerEnabled,
	}
}

// SettingsPatch is a partial update. Nil fields are left untouched.
type SettingsPatch struct {
	DarkMode          *bool
	Volume            *int
	VisualizerEnabled *bool
}

// IsEmpty reports whether the patch carries no fields
func (p SettingsPatch) IsEmpty() bool {
	return p.DarkMode == nil && p.Volume == nil && p.VisualizerEnabled == nil
}

// Apply merges the patch into s and returns the result
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.Volume != nil {
		s.Volume = *p.Volume
	}
	if p.VisualizerEnabled != nil {
		s.VisualizerEnabled = *p.VisualizerEnabled
	}
	return s
}
