package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrUnsupportedDriver is returned for an unknown storage driver name.
var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// BlobStorage stores exported files by relative, slash-separated path.
type BlobStorage interface {
	// Upload stores data from the reader at the specified path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves data from the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the data at the specified path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a location for the data: a filesystem path for local
	// storage, a presigned URL for S3.
	GetURL(ctx context.Context, path string) (string, error)
}

// Config selects and configures a BlobStorage driver.
type Config struct {
	Driver        string
	LocalDir      string
	Bucket        string
	Region        string
	Prefix        string
	PresignExpiry time.Duration
}

// New creates the BlobStorage named by cfg.Driver ("local" or "s3").
func New(ctx context.Context, cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local_dir is required for local storage")
		}
		return NewLocalStorage(cfg.LocalDir)

	case "s3":
		s, err := NewS3Storage(ctx, cfg.Bucket, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		s.prefix = cleanPrefix(cfg.Prefix)
		if cfg.PresignExpiry > 0 {
			s.presignExpiration = cfg.PresignExpiry
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}
}

func cleanPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
