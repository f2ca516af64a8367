package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage abstracts the media object store. Implementations must not
// overwrite an existing object at the same path; callers avoid collisions by
// embedding a timestamp in the path.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}
