package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/resonance/internal/dependencies/mocks"
	"github.com/mcoot/resonance/internal/model"
	"github.com/mcoot/resonance/internal/storage"
	"github.com/mcoot/resonance/internal/storage/memory"
)

// TestDeviceID is the device id reported by the test fingerprinter
const TestDeviceID model.DeviceID = "test-device"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock         *mocks.MockClock
	MockFingerprinter *mocks.MockFingerprinter
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App over existing storage, which
// simulates a restart when the storage came from an earlier App
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockFingerprinter := mocks.NewMockFingerprinter(TestDeviceID)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockFingerprinter, model.DefaultTrack(), logger)

	return &TestApp{
		App:               app,
		MockClock:         mockClock,
		MockFingerprinter: mockFingerprinter,
	}
}
