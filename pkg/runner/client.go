package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/trailsense/image-optimizer/internal/dbosruntime"
	"github.com/trailsense/image-optimizer/internal/workflows"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

// Client provides a client-only API for enqueueing optimize workflows
// without executing them. Workers must be running separately to execute the
// enqueued workflows.
type Client struct {
	runtime *dbosruntime.Runtime
	runner  *workflows.WorkflowRunner
}

// NewClient creates a client that can start workflows but doesn't execute
// them
func NewClient(cfg Config) (*Client, error) {
	dbosRuntime, err := dbosruntime.NewRuntime(context.Background(), dbosruntime.Config{
		DatabaseURL: cfg.DatabaseURL,
		AppName:     cfg.AppName,
		QueueName:   cfg.QueueName,
		Concurrency: 0, // Client mode: don't process workflows
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DBOS: %w", err)
	}

	// Enqueueing only, no workflow registration
	workflowRunner := workflows.NewWorkflowRunner(dbosRuntime)

	if err := dbosRuntime.Launch(); err != nil {
		return nil, fmt.Errorf("failed to launch DBOS: %w", err)
	}

	return &Client{
		runtime: dbosRuntime,
		runner:  workflowRunner,
	}, nil
}

// RunOptimize enqueues an optimize workflow for workers to execute
func (c *Client) RunOptimize(ctx context.Context, bucket, key string, makePublic bool) (string, error) {
	return c.runner.RunAsync(ctx, optimize.ProcessRequest{
		Bucket:     bucket,
		Key:        key,
		MakePublic: makePublic,
		Job:        optimize.JobOptimize,
	})
}

// Status retrieves the status of a previously enqueued workflow
func (c *Client) Status(ctx context.Context, runID string) (*workflows.WorkflowStatus, error) {
	return c.runner.GetStatus(ctx, runID)
}

// Shutdown gracefully shuts down the client
func (c *Client) Shutdown(timeoutSeconds int) {
	if c.runtime != nil {
		c.runtime.Shutdown(time.Duration(timeoutSeconds) * time.Second)
	}
}
