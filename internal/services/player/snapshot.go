package player

import (
	"encoding/json"

	"github.com/samber/lo"

	"github.com/mcoot/resonance/internal/model"
)

// snapshot is the persisted form of the session. Every field is optional on
// read so that a partial or older snapshot falls back field by field.
type snapshot struct {
	IsPlaying      *bool   `json:"isPlaying"`
	Progress       *int    `json:"progress"`
	Volume         *int    `json:"volume"`
	IsMuted        *bool   `json:"isMuted"`
	IsFavorite     *bool   `json:"isFavorite"`
	IsShuffleOn    *bool   `json:"isShuffleOn"`
	IsRepeatOn     *bool   `json:"isRepeatOn"`
	VisualizerType *string `json:"visualizerType"`
	PreviousVolume *int    `json:"previousVolume"`
}

func encodeSnapshot(s model.PlayerState) ([]byte, error) {
	return json.Marshal(snapshot{
		IsPlaying:      lo.ToPtr(s.IsPlaying),
		Progress:       lo.ToPtr(s.Position),
		Volume:         lo.ToPtr(s.Volume),
		IsMuted:        lo.ToPtr(s.IsMuted),
		IsFavorite:     lo.ToPtr(s.IsFavorite),
		IsShuffleOn:    lo.ToPtr(s.IsShuffleOn),
		IsRepeatOn:     lo.ToPtr(s.IsRepeatOn),
		VisualizerType: lo.ToPtr(string(s.Visualizer)),
		PreviousVolume: lo.ToPtr(s.PreMuteVolume),
	})
}

func decodeSnapshot(data []byte) (snapshot, error) {
	var snap snapshot
	err := json.Unmarshal(data, &snap)
	return snap, err
}

// overlay copies every field present in the snapshot onto base
func (snap snapshot) overlay(base model.PlayerState) model.PlayerState {
	if snap.IsPlaying != nil {
		base.IsPlaying = *snap.IsPlaying
	}
	if snap.Progress != nil {
		base.Position = *snap.Progress
	}
	if snap.Volume != nil {
		base.Volume = *snap.Volume
	}
	if snap.IsMuted != nil {
		base.IsMuted = *snap.IsMuted
	}
	if snap.IsFavorite != nil {
		base.IsFavorite = *snap.IsFavorite
	}
	if snap.IsShuffleOn != nil {
		base.IsShuffleOn = *snap.IsShuffleOn
	}
	if snap.IsRepeatOn != nil {
		base.IsRepeatOn = *snap.IsRepeatOn
	}
	if snap.VisualizerType != nil {
		if v := model.VisualizerType(*snap.VisualizerType); v.Valid() {
			base.Visualizer = v
		}
	}
	if snap.PreviousVolume != nil {
		base.PreMuteVolume = *snap.PreviousVolume
	}
	return base
}
