// Package storage persists generated report files on local disk or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Store is a flat key/value blob store.
type Store interface {
	// Put writes body under key.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// Open streams the object back together with its content type.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)

	Remove(ctx context.Context, key string) error

	// URL returns a link to the object. Stores without a public base URL may presign
	// one valid for expires.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// checkKey rejects keys that could escape the store's namespace.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || path.Base(key) != key {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
