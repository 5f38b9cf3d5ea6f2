package request

import "github.com/mcoot/resonance/internal/model"

// CommitIdentityRequest is the request body for naming this device
type CommitIdentityRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateSettingsRequest is the request body for a partial settings update
type UpdateSettingsRequest struct {
	DarkMode          *bool `json:"dark_mode,omitempty"`
	Volume            *int  `json:"volume,omitempty"`
	VisualizerEnabled *bool `json:"visualizer_enabled,omitempty"`
}

// Patch converts the request into a settings patch
func (r UpdateSettingsRequest) Patch() model.SettingsPatch {
	return model.SettingsPatch{
		DarkMode:          r.DarkMode,
		Volume:            r.Volume,
		VisualizerEnabled: r.VisualizerEnabled,
	}
}

// IntentRequest is the request body for dispatching a player intent
type IntentRequest struct {
	Type  string   `json:"type"`
	Value *float64 `json:"value,omitempty"`
}

// NeedsValue reports whether the intent type takes a numeric value
func (r IntentRequest) NeedsValue() bool {
	t := model.IntentType(r.Type)
	return t == model.IntentSetVolumeFromInput || t == model.IntentSeek
}

// Intent converts the request into a model.Intent
func (r IntentRequest) Intent() model.Intent {
	intent := model.Intent{Type: model.IntentType(r.Type)}
	if r.Value != nil {
		intent.Value = *r.Value
	}
	return intent
}
