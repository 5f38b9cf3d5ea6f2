package mocks

import (
	"context"

	"github.com/mcoot/resonance/internal/dependencies/fingerprint"
	"github.com/mcoot/resonance/internal/model"
)

// MockFingerprinter returns a fixed device ID or error
type MockFingerprinter struct {
	ID    model.DeviceID
	Err   error
	Calls int
}

// Ensure MockFingerprinter implements Fingerprinter
var _ fingerprint.Fingerprinter = (*MockFingerprinter)(nil)

// NewMockFingerprinter creates a MockFingerprinter returning id
func NewMockFingerprinter(id model.DeviceID) *MockFingerprinter {
	return &MockFingerprinter{ID: id}
}

// Fingerprint returns the configured ID, or Err when set
func (f *MockFingerprinter) Fingerprint(ctx context.Context) (model.DeviceID, error) {
	f.Calls++
	if f.Err != nil {
		return "", f.Err
	}
	return f.ID, nil
}

// Fail makes subsequent calls return err
func (f *MockFingerprinter) Fail(err error) {
	f.Err = err
}
