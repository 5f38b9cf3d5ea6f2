package testutil

import (
	"context"
	"errors"

	"github.com/mcoot/resonance/internal/storage"
)

// ErrStorageDown is returned by FlakyStorage when a failure is switched on
var ErrStorageDown = errors.New("storage unavailable")

// FlakyStorage wraps a Storage and fails reads or writes on demand
type FlakyStorage struct {
	storage.Storage
	FailGet bool
	FailSet bool
	Sets    int
}

// NewFlakyStorage wraps inner
func NewFlakyStorage(inner storage.Storage) *FlakyStorage {
	return &FlakyStorage{Storage: inner}
}

func (f *FlakyStorage) Get(ctx context.Context, key string) (string, error) {
	if f.FailGet {
		return "", ErrStorageDown
	}
	return f.Storage.Get(ctx, key)
}

func (f *FlakyStorage) Set(ctx context.Context, key, value string) error {
	if f.FailSet {
		return ErrStorageDown
	}
	f.Sets++
	return f.Storage.Set(ctx, key, value)
}
