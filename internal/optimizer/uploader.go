package optimizer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/trailsense/image-optimizer/internal/metrics"
	"github.com/trailsense/image-optimizer/internal/storage"
)

const (
	variantContentType  = "image/jpeg"
	variantCacheControl = "max-age=31536000" // 1 year; derived keys are never reused for different content
	presignExpiry       = 7 * 24 * time.Hour
)

// DeriveKey maps an original object key to the storage key of one optimized
// variant: an "optimized/" segment is inserted before the filename and a
// "_{profile}" suffix replaces the extension with ".jpg". The extension is
// replaced unconditionally; every profile encodes JPEG today.
//
//	proj/site/img.png -> proj/site/optimized/img_thumbnail.jpg
func DeriveKey(originalKey, profileName string) string {
	dir := path.Dir(originalKey)
	base := strings.TrimSuffix(path.Base(originalKey), path.Ext(originalKey))
	return path.Join(dir, "optimized", fmt.Sprintf("%s_%s.jpg", base, profileName))
}

// Upload stores each variant under its derived key and returns a map of
// profile name to retrievable URL. Public uploads get a world-readable ACL
// and a static URL; private uploads get a presigned URL valid for 7 days.
// A failure on one variant is logged and omitted from the result; the other
// variants continue uploading.
func (p *Pipeline) Upload(ctx context.Context, bucket, originalKey string, images map[string][]byte, makePublic bool) map[string]string {
	urls := make(map[string]string, len(images))

	for _, name := range ProfileNames {
		data, ok := images[name]
		if !ok {
			continue
		}

		key := DeriveKey(originalKey, name)
		opts := storage.PutOptions{
			ContentType:  variantContentType,
			CacheControl: variantCacheControl,
			PublicRead:   makePublic,
		}

		if err := p.store.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
			log.Printf("Failed to upload %s variant to %s/%s: %v", name, bucket, key, err)
			metrics.VariantFailures.WithLabelValues(name, "upload").Inc()
			continue
		}

		var url string
		if makePublic {
			url = p.store.ObjectURL(bucket, key)
		} else {
			presigned, err := p.store.PresignedGetObject(ctx, bucket, key, presignExpiry)
			if err != nil {
				log.Printf("Failed to presign %s variant at %s/%s: %v", name, bucket, key, err)
				metrics.VariantFailures.WithLabelValues(name, "presign").Inc()
				continue
			}
			url = presigned
		}

		urls[name] = url
		metrics.BytesOut.WithLabelValues(name).Add(float64(len(data)))
		log.Printf("Uploaded %s variant to %s/%s", name, bucket, key)
	}

	return urls
}

// Process runs the full pipeline: fetch the source object, generate all
// variants, upload them, and return their URLs. A fetch failure is fatal and
// propagates to the caller; everything after the fetch is per-profile
// isolated.
func (p *Pipeline) Process(ctx context.Context, bucket, key string, makePublic bool) (map[string]string, error) {
	log.Printf("Downloading source image from %s/%s", bucket, key)

	data, err := p.fetch(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	originalSize := len(data)
	log.Printf("Original image size: %d bytes (%.2f MB)", originalSize, float64(originalSize)/1024/1024)
	metrics.BytesIn.Add(float64(originalSize))

	optimized := OptimizeAll(data)

	for _, name := range ProfileNames {
		out, ok := optimized[name]
		if !ok {
			continue
		}
		reduction := (1 - float64(len(out))/float64(originalSize)) * 100
		log.Printf("%s: %d bytes (%.2f KB, %.1f%% reduction)", name, len(out), float64(len(out))/1024, reduction)
	}

	urls := p.Upload(ctx, bucket, key, optimized, makePublic)
	metrics.ImagesProcessed.Inc()

	return urls, nil
}

// fetch reads the source object's full content
func (p *Pipeline) fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := p.store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("source fetch failed: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("source read failed: %w", err)
	}

	return data, nil
}
