package storage

import (
	"context"
)

// Storage is a durable text key/value store. Values are opaque to the
// backend; callers own serialization. Get returns model.ErrEntryNotFound when
// the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
