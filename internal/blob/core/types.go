// Package core defines the artifact storage contract shared by the blob
// facade and its driver implementations.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
	// Overwrite replaces an existing object instead of failing with ErrExists.
	Overwrite bool
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is a minimal S3-like key/value store for report artifacts.
//
// Put is create-only unless PutOptions.Overwrite is set. Get and Head return
// an error wrapping ErrNotFound for missing keys. Delete reports whether the
// key existed. List returns keys with the prefix in ascending order.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// Presigner is implemented by drivers able to hand out time-limited download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

var (
	// ErrNotFound is wrapped by drivers when a key does not exist.
	ErrNotFound = errors.New("blob: not found")
	// ErrExists is wrapped by drivers when a create-only Put hits an existing key.
	ErrExists = errors.New("blob: already exists")
	// ErrInvalidKey is wrapped when a key is empty or escapes the store root.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// CloneMetadata copies user metadata so stored and returned maps never alias.
func CloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
