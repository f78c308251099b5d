package workflows

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsense/image-optimizer/internal/optimizer"
	"github.com/trailsense/image-optimizer/internal/storage"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

func seedTestImage(t *testing.T, store *storage.FilesystemStore, bucket, key string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 1200, 900))
	for y := 0; y < 900; y++ {
		for x := 0; x < 1200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	require.NoError(t, store.PutObject(context.Background(), bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), storage.PutOptions{ContentType: "image/jpeg"}))
}

func TestOptimizeWorkflowExecute(t *testing.T) {
	store, err := storage.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	seedTestImage(t, store, "media", "site/shot.jpg")

	workflow := NewOptimizeWorkflow(optimizer.NewPipeline(store))

	result, err := workflow.Execute(&WorkflowContext{
		Ctx: context.Background(),
		Request: optimize.ProcessRequest{
			Bucket: "media",
			Key:    "site/shot.jpg",
			Job:    optimize.JobOptimize,
		},
		RunID: "test-run",
	})

	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Len(t, result.URLs, 3)
	assert.Equal(t, 3, result.Outputs["variant_count"])
}

func TestOptimizeWorkflowValidation(t *testing.T) {
	workflow := NewOptimizeWorkflow(nil)

	result, err := workflow.Execute(&WorkflowContext{
		Ctx:     context.Background(),
		Request: optimize.ProcessRequest{Key: "shot.jpg", Job: optimize.JobOptimize},
		RunID:   "test-run",
	})

	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.False(t, result.Success)
}

func TestOptimizeWorkflowMissingSource(t *testing.T) {
	store, err := storage.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	workflow := NewOptimizeWorkflow(optimizer.NewPipeline(store))

	result, err := workflow.Execute(&WorkflowContext{
		Ctx: context.Background(),
		Request: optimize.ProcessRequest{
			Bucket: "media",
			Key:    "missing.jpg",
			Job:    optimize.JobOptimize,
		},
		RunID: "test-run",
	})

	require.Error(t, err)
	assert.False(t, result.Success)
}

func TestWorkflowRunnerDispatch(t *testing.T) {
	store, err := storage.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	seedTestImage(t, store, "media", "shot.jpg")

	runner := NewWorkflowRunner(nil)
	runner.Register(optimize.JobOptimize, NewOptimizeWorkflow(optimizer.NewPipeline(store)))

	result, err := runner.Run(&WorkflowContext{
		Ctx:     context.Background(),
		Request: optimize.ProcessRequest{Bucket: "media", Key: "shot.jpg", Job: optimize.JobOptimize},
		RunID:   "test-run",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = runner.Run(&WorkflowContext{
		Ctx:     context.Background(),
		Request: optimize.ProcessRequest{Bucket: "media", Key: "shot.jpg", Job: "unknown"},
		RunID:   "test-run",
	})
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}
