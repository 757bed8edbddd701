// Package bucket provides the object store used for battle audio and
// metadata. Two adapters exist: S3 for deployments and a local
// filesystem store for development and tests.
package bucket

import (
	"context"

	"github.com/tunearena/gateway/internal/arena"
)

// Bucket is a flat keyed blob store.
type Bucket interface {
	// Get returns the object at key, or a NotFoundError.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes the object at key. When allowOverwrite is false and the
	// key already exists, Put fails with a StorageError.
	Put(ctx context.Context, key string, data []byte, contentType string, allowOverwrite bool) error
	// Delete removes the object at key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the URL clients use to fetch the object.
	PublicURL(key string) string
}

func storageErr(op, key string, err error) error {
	return &arena.StorageError{Op: op, Key: key, Err: err}
}
