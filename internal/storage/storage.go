// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultSignedURLTTL is the lifetime of a signed retrieval URL when the
// caller does not specify one.
const DefaultSignedURLTTL = time.Hour

// ErrNotStoreURL is returned by KeyFromURL when the URL does not point into
// this store's public base.
var ErrNotStoreURL = errors.New("url does not reference this object store")

// Storage is the interface for uploading and retrieving objects.
//
// Upload overwrites silently when the key already exists; key uniqueness is
// the caller's responsibility. Delete is idempotent: removing a key that does
// not exist succeeds. Every Upload/Delete mutates durable state outside the
// application's transaction boundary.
type Storage interface {
	// Upload streams data to the store under the given key and returns the
	// publicly addressable URL of the stored object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	// Delete removes an object identified by key. Deleting a missing key is
	// not an error; only transport and auth failures are.
	Delete(ctx context.Context, key string) error
	// SignedURL produces a time-limited URL for private retrieval without
	// exposing credentials. A non-positive ttl uses DefaultSignedURLTTL.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
	// KeyFromURL is the inverse of PublicURL. Returns ErrNotStoreURL when the
	// URL is not under the store's public base.
	KeyFromURL(rawURL string) (string, error)
}
