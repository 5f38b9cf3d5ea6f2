package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/resonance/internal/dependencies/clock"
	"github.com/mcoot/resonance/internal/dependencies/fingerprint"
	"github.com/mcoot/resonance/internal/model"
	"github.com/mcoot/resonance/internal/storage"
)

// record is the persisted form of an identity
type record struct {
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // unix millis
}

// Service resolves and records the soft per-device identity
type Service struct {
	storage       storage.Storage
	fingerprinter fingerprint.Fingerprinter
	clock         clock.Clock
	logger        *slog.Logger
}

// New creates a new identity Service
func New(storage storage.Storage, fingerprinter fingerprint.Fingerprinter, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:       storage,
		fingerprinter: fingerprinter,
		clock:         clock,
		logger:        logger.With(slog.String("component", "identity")),
	}
}

// Resolve returns the identity recorded for the calling device. It never
// fails: an unknown device and unreadable storage report absence. Without a
// fingerprint the placeholder device is looked up, matching Commit.
func (s *Service) Resolve(ctx context.Context) (*model.Identity, bool) {
	deviceID := s.deviceID(ctx)

	rec, err := s.load(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, model.ErrEntryNotFound) {
			s.logger.Warn("failed to load identity",
				slog.String("device_id", string(deviceID)),
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	return rec.toModel(deviceID), true
}

// Commit records displayName for the calling device and returns the stored
// identity. An existing record keeps its original creation time.
func (s *Service) Commit(ctx context.Context, displayName string) (*model.Identity, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, model.ErrInvalidDisplayName
	}

	deviceID := s.deviceID(ctx)

	rec := record{
		Name:      displayName,
		CreatedAt: s.clock.Now().UnixMilli(),
	}
	if existing, err := s.load(ctx, deviceID); err == nil {
		rec.CreatedAt = existing.CreatedAt
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Set(ctx, storage.IdentityKey(deviceID), string(data)); err != nil {
		s.logger.Error("failed to save identity",
			slog.String("device_id", string(deviceID)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("save identity: %w", err)
	}

	s.logger.Info("identity committed",
		slog.String("device_id", string(deviceID)),
		slog.String("display_name", displayName))

	return rec.toModel(deviceID), nil
}

// deviceID fingerprints the caller, falling back to the placeholder device
func (s *Service) deviceID(ctx context.Context) model.DeviceID {
	id, err := s.fingerprinter.Fingerprint(ctx)
	if err != nil {
		s.logger.Warn("fingerprint unavailable, using placeholder device",
			slog.String("error", err.Error()))
		return model.UnknownDeviceID
	}
	return id
}

func (s *Service) load(ctx context.Context, deviceID model.DeviceID) (*record, error) {
	data, err := s.storage.Get(ctx, storage.IdentityKey(deviceID))
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("decode identity: %w", model.ErrInvalidDisplayName)
	}
	return &rec, nil
}

func (r *record) toModel(deviceID model.DeviceID) *model.Identity {
	return &model.Identity{
		DeviceID:    deviceID,
		DisplayName: r.Name,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
	}
}
