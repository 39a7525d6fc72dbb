package storage

import (
	"context"
	"fmt"
)

// Storage is the object-storage collaborator. Implementations return the
// public URL of an uploaded object and accept that same URL back for
// deletion, so callers never need to know how keys map to URLs.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Error wraps a failed storage operation. It is transient from the caller's
// point of view: safe to retry with backoff, never retried here.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
