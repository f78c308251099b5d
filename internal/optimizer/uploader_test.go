package optimizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsense/image-optimizer/internal/storage"
)

// fakeStore is an in-memory ObjectStore with per-key failure injection
type fakeStore struct {
	objects    map[string][]byte
	putOpts    map[string]storage.PutOptions
	failKeys   map[string]bool
	lastExpiry time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  make(map[string][]byte),
		putOpts:  make(map[string]storage.PutOptions),
		failKeys: make(map[string]bool),
	}
}

func (f *fakeStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts storage.PutOptions) error {
	if f.failKeys[key] {
		return errors.New("injected upload failure")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = data
	f.putOpts[bucket+"/"+key] = opts
	return nil
}

func (f *fakeStore) ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

func (f *fakeStore) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	f.lastExpiry = expiry
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d", bucket, key, int64(expiry.Seconds())), nil
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		originalKey string
		profile     string
		want        string
	}{
		{"proj/site/img.png", "thumbnail", "proj/site/optimized/img_thumbnail.jpg"},
		{"a/b/c.jpg", "full", "a/b/optimized/c_full.jpg"},
		{"uploads/2026/01/photo.jpeg", "preview", "uploads/2026/01/optimized/photo_preview.jpg"},
		{"photo.png", "thumbnail", "optimized/photo_thumbnail.jpg"},
		{"a/b/c.webp", "preview", "a/b/optimized/c_preview.jpg"}, // extension replaced regardless of source format
	}

	for _, tt := range tests {
		t.Run(tt.originalKey+"/"+tt.profile, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveKey(tt.originalKey, tt.profile))
		})
	}
}

func TestUploadPublic(t *testing.T) {
	store := newFakeStore()
	pipeline := NewPipeline(store)

	images := map[string][]byte{
		"thumbnail": []byte("thumb-bytes"),
		"preview":   []byte("preview-bytes"),
		"full":      []byte("full-bytes"),
	}

	urls := pipeline.Upload(context.Background(), "camera-media", "site/cam1/shot.png", images, true)

	require.Len(t, urls, 3)
	assert.Equal(t, "https://camera-media.s3.amazonaws.com/site/cam1/optimized/shot_thumbnail.jpg", urls["thumbnail"])
	assert.Equal(t, "https://camera-media.s3.amazonaws.com/site/cam1/optimized/shot_preview.jpg", urls["preview"])
	assert.Equal(t, "https://camera-media.s3.amazonaws.com/site/cam1/optimized/shot_full.jpg", urls["full"])

	opts := store.putOpts["camera-media/site/cam1/optimized/shot_thumbnail.jpg"]
	assert.Equal(t, "image/jpeg", opts.ContentType)
	assert.Equal(t, "max-age=31536000", opts.CacheControl)
	assert.True(t, opts.PublicRead)
}

func TestUploadPrivatePresigns(t *testing.T) {
	store := newFakeStore()
	pipeline := NewPipeline(store)

	images := map[string][]byte{"thumbnail": []byte("thumb-bytes")}

	urls := pipeline.Upload(context.Background(), "camera-media", "shot.jpg", images, false)

	require.Len(t, urls, 1)
	assert.Contains(t, urls["thumbnail"], "X-Amz-Expires=604800")
	assert.Equal(t, 7*24*time.Hour, store.lastExpiry)
	assert.False(t, store.putOpts["camera-media/optimized/shot_thumbnail.jpg"].PublicRead)
}

func TestUploadPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.failKeys["site/optimized/shot_preview.jpg"] = true
	pipeline := NewPipeline(store)

	images := map[string][]byte{
		"thumbnail": []byte("thumb-bytes"),
		"preview":   []byte("preview-bytes"),
		"full":      []byte("full-bytes"),
	}

	urls := pipeline.Upload(context.Background(), "camera-media", "site/shot.jpg", images, true)

	// The failing variant is omitted, siblings still upload
	require.Len(t, urls, 2)
	assert.Contains(t, urls, "thumbnail")
	assert.Contains(t, urls, "full")
	assert.NotContains(t, urls, "preview")
}

func TestUploadSkipsAbsentProfiles(t *testing.T) {
	store := newFakeStore()
	pipeline := NewPipeline(store)

	urls := pipeline.Upload(context.Background(), "camera-media", "shot.jpg", map[string][]byte{}, true)
	require.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestProcessFetchFailureIsFatal(t *testing.T) {
	pipeline := NewPipeline(newFakeStore())

	_, err := pipeline.Process(context.Background(), "camera-media", "missing.jpg", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source fetch failed")
}

func TestProcessEndToEnd(t *testing.T) {
	store := newFakeStore()
	store.objects["camera-media/site/cam1/shot.jpg"] = newTestJPEG(t, 4000, 3000)
	pipeline := NewPipeline(store)

	urls, err := pipeline.Process(context.Background(), "camera-media", "site/cam1/shot.jpg", true)
	require.NoError(t, err)
	require.Len(t, urls, 3)

	for _, name := range ProfileNames {
		data, ok := store.objects["camera-media/"+DeriveKey("site/cam1/shot.jpg", name)]
		require.True(t, ok, "missing stored %s variant", name)

		img, _, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)

		longest := img.Bounds().Dx()
		if img.Bounds().Dy() > longest {
			longest = img.Bounds().Dy()
		}
		assert.Equal(t, Profiles[name].MaxDimension, longest)
	}
}
