package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// FilesystemStore implements ObjectStore on the local filesystem. Buckets
// map to directories under the base directory. Intended for development and
// tests; "presigned" URLs are plain file URLs with an expiry query parameter
// and are not enforced.
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore creates a filesystem-backed object store
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FilesystemStore{baseDir: baseDir}, nil
}

// resolve maps bucket/key to a local path, rejecting path traversal
func (fs *FilesystemStore) resolve(bucket, key string) (string, error) {
	path := filepath.Join(fs.baseDir, bucket, filepath.FromSlash(key))
	if !filepath.HasPrefix(filepath.Clean(path), filepath.Clean(fs.baseDir)) {
		return "", fmt.Errorf("invalid key: path traversal detected")
	}
	return path, nil
}

// GetObject returns a reader for the file at bucket/key
func (fs *FilesystemStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	path, err := fs.resolve(bucket, key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}

	return file, nil
}

// PutObject writes the object content to bucket/key. Metadata is not
// persisted by this backend.
func (fs *FilesystemStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) error {
	path, err := fs.resolve(bucket, key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create object file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}

	return file.Close()
}

// ObjectURL returns a file URL for the object
func (fs *FilesystemStore) ObjectURL(bucket, key string) string {
	path, err := fs.resolve(bucket, key)
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// PresignedGetObject returns a file URL carrying the expiry as a query
// parameter, mirroring the shape of a real presigned URL
func (fs *FilesystemStore) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	base := fs.ObjectURL(bucket, key)
	if base == "" {
		return "", fmt.Errorf("invalid key: %s/%s", bucket, key)
	}

	params := url.Values{}
	params.Set("X-Amz-Expires", fmt.Sprintf("%d", int64(expiry.Seconds())))
	return base + "?" + params.Encode(), nil
}
