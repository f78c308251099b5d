package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions carries per-object metadata for uploads
type PutOptions struct {
	ContentType  string
	CacheControl string
	// PublicRead marks the object world-readable on backends that support
	// access control
	PublicRead bool
}

// ObjectStore provides access to bucket/key addressed object storage
type ObjectStore interface {
	// GetObject returns a reader for the object's full content
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// PutObject stores an object with the given metadata
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) error

	// ObjectURL returns the static public URL for an object. No check is
	// made that the object exists or is actually readable.
	ObjectURL(bucket, key string) string

	// PresignedGetObject returns a time-limited retrieval URL. Issuing the
	// URL performs no network call.
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
