package storage

import "github.com/mcoot/resonance/internal/model"

// Well-known keys shared by every backend
const (
	identityKeyNamespace = "resonance-user"

	SettingsKey    = "resonance-app-settings"
	PlayerStateKey = "playerState"
)

// IdentityKey returns the key for a device's identity record. Distinct device
// IDs never map to the same key.
func IdentityKey(id model.DeviceID) string {
	return identityKeyNamespace + "-" + string(id)
}
