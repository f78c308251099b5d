package workflows

import (
	"fmt"
	"log"

	"github.com/trailsense/image-optimizer/internal/optimizer"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

// OptimizeWorkflow runs the optimize-and-upload pipeline for one stored image
type OptimizeWorkflow struct {
	pipeline *optimizer.Pipeline
}

// NewOptimizeWorkflow creates an optimize workflow around the given pipeline
func NewOptimizeWorkflow(pipeline *optimizer.Pipeline) *OptimizeWorkflow {
	return &OptimizeWorkflow{pipeline: pipeline}
}

// Name returns the workflow name
func (w *OptimizeWorkflow) Name() string {
	return "OptimizeWorkflow"
}

// Execute runs the optimization workflow
func (w *OptimizeWorkflow) Execute(wctx *WorkflowContext) (*WorkflowResult, error) {
	log.Printf("[%s] Starting optimize workflow for %s/%s", wctx.RunID, wctx.Request.Bucket, wctx.Request.Key)

	if err := w.validateRequest(&wctx.Request); err != nil {
		log.Printf("[%s] Validation failed: %v", wctx.RunID, err)
		return &WorkflowResult{
			Success: false,
			Error:   fmt.Errorf("validation failed: %w", err),
		}, err
	}

	urls, err := w.pipeline.Process(wctx.Ctx, wctx.Request.Bucket, wctx.Request.Key, wctx.Request.MakePublic)
	if err != nil {
		log.Printf("[%s] Processing failed: %v", wctx.RunID, err)
		return &WorkflowResult{
			Success: false,
			Error:   fmt.Errorf("processing failed: %w", err),
		}, err
	}

	log.Printf("[%s] Optimize workflow completed: %d variant(s) uploaded", wctx.RunID, len(urls))

	return &WorkflowResult{
		Success: true,
		URLs:    urls,
		Outputs: map[string]interface{}{
			"bucket":        wctx.Request.Bucket,
			"key":           wctx.Request.Key,
			"variant_count": len(urls),
		},
	}, nil
}

// validateRequest validates the workflow request
func (w *OptimizeWorkflow) validateRequest(req *optimize.ProcessRequest) error {
	if req.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidRequest)
	}
	if req.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidRequest)
	}
	return nil
}
