package settings

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a settings document has never been saved.
var ErrNotFound = errors.New("setting not found")

// Store persists settings documents by key.
type Store interface {
	// Get returns the raw document stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, value []byte) error
}
