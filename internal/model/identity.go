package model

import "time"

// DeviceID is a best-effort per-browser fingerprint. It is not unique and not a
// credential.
type DeviceID string

// UnknownDeviceID is used when no fingerprint can be computed
const UnknownDeviceID DeviceID = "unknown-device"

// Identity maps a device to the display name chosen during onboarding
type Identity struct {
	DeviceID    DeviceID
	DisplayName string
	CreatedAt   time.Time
}
