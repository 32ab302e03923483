// Package blob is the single entry point to report artifact storage. Callers
// depend on Store and open a driver through Open; only this package imports
// the infra drivers.
package blob

import (
	"context"
	"fmt"
	"io"

	"placementhub/internal/blob/core"
	"placementhub/internal/config"
	fsblob "placementhub/internal/infra/blob/fs"
	memblob "placementhub/internal/infra/blob/memory"
	s3blob "placementhub/internal/infra/blob/s3"
)

type (
	Store      = core.Store
	Info       = core.Info
	PutOptions = core.PutOptions
	Driver     = core.Driver
	Presigner  = core.Presigner
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrNotFound   = core.ErrNotFound
	ErrExists     = core.ErrExists
	ErrInvalidKey = core.ErrInvalidKey
)

// Open returns the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Driver {
	case config.BlobFS, "":
		store, err := fsblob.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BlobMemory:
		return NewMemory(), nil
	case config.BlobS3:
		store, err := s3blob.New(ctx, s3blob.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			PathStyle:       cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewMemory returns an empty in-process store.
func NewMemory() Store { return memblob.New() }

// ReadAll fetches key and returns its content with the blob info.
func ReadAll(ctx context.Context, store Store, key string) (Info, []byte, error) {
	info, rc, err := store.Get(ctx, key)
	if err != nil {
		return Info{}, nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Info{}, nil, fmt.Errorf("read %s: %w", key, err)
	}
	return info, data, nil
}
