// Package optimizer derives web-sized JPEG variants of an uploaded image and
// persists them to object storage under a deterministic key convention.
package optimizer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/trailsense/image-optimizer/internal/metrics"
	"github.com/trailsense/image-optimizer/internal/storage"
)

// Pipeline runs the optimize-and-upload pipeline against an object store.
// It is stateless apart from the store handle and safe to reuse across
// invocations.
type Pipeline struct {
	store storage.ObjectStore
}

// NewPipeline creates a pipeline backed by the given object store
func NewPipeline(store storage.ObjectStore) *Pipeline {
	return &Pipeline{store: store}
}

// Optimize re-encodes the image for a single named profile and returns the
// encoded JPEG bytes. An unknown profile name fails before any decode work.
func Optimize(data []byte, profileName string) ([]byte, error) {
	profile, ok := Profiles[profileName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProfile, profileName, strings.Join(ProfileNames, ", "))
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img = flattenToOpaque(img)

	bounds := img.Bounds()
	newWidth, newHeight := ResizeDimensions(bounds.Dx(), bounds.Dy(), profile.MaxDimension)

	// Resample only when the target is strictly smaller in both axes;
	// never upscale
	if newWidth < bounds.Dx() && newHeight < bounds.Dy() {
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(profile.Quality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return buf.Bytes(), nil
}

// OptimizeAll generates every profile variant of the image. A failure on one
// profile is logged and that profile is left out of the result; the others
// still run. The returned map may be partial or empty, which is a valid
// outcome rather than an error.
func OptimizeAll(data []byte) map[string][]byte {
	optimized := make(map[string][]byte, len(ProfileNames))

	for _, name := range ProfileNames {
		out, err := Optimize(data, name)
		if err != nil {
			log.Printf("Failed to generate %s variant: %v", name, err)
			metrics.VariantFailures.WithLabelValues(name, "encode").Inc()
			continue
		}
		log.Printf("Generated %s variant: %d bytes", name, len(out))
		optimized[name] = out
	}

	return optimized
}

// hasAlpha reports whether the decoded image can carry transparency
func hasAlpha(img image.Image) bool {
	switch img.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if _, ok := img.(*image.Paletted); ok {
		return true
	}
	return false
}

// flattenToOpaque composites images with an alpha channel or palette onto an
// opaque white background, using the image's own alpha as the blend mask.
// Opaque images pass through.
func flattenToOpaque(img image.Image) image.Image {
	if !hasAlpha(img) {
		return img
	}

	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}
