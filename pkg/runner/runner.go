// Package runner provides a high-level API for embedding the optimization
// pipeline, with DBOS-backed async execution.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/trailsense/image-optimizer/internal/dbosruntime"
	"github.com/trailsense/image-optimizer/internal/optimizer"
	"github.com/trailsense/image-optimizer/internal/storage"
	"github.com/trailsense/image-optimizer/internal/workflows"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

// Config holds the configuration for initializing the runner
type Config struct {
	DatabaseURL        string           // DBOS PostgreSQL connection string
	AppName            string           // Application name for DBOS
	QueueName          string           // DBOS queue name
	Concurrency        int              // Number of concurrent workers
	S3                 storage.S3Config // Object storage settings
	ApplicationVersion string           // Optional: override binary hash for version matching
}

// Runner executes optimize workflows via DBOS
type Runner struct {
	runtime *dbosruntime.Runtime
	runner  *workflows.WorkflowRunner
}

// New creates and initializes a runner that both enqueues and executes
// workflows
func New(cfg Config) (*Runner, error) {
	dbosRuntime, err := dbosruntime.NewRuntime(context.Background(), dbosruntime.Config{
		DatabaseURL:        cfg.DatabaseURL,
		AppName:            cfg.AppName,
		QueueName:          cfg.QueueName,
		Concurrency:        cfg.Concurrency,
		ApplicationVersion: cfg.ApplicationVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DBOS: %w", err)
	}

	workflowRunner := workflows.NewWorkflowRunner(dbosRuntime)

	store, err := storage.NewS3Store(cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	pipeline := optimizer.NewPipeline(store)
	workflowRunner.Register(optimize.JobOptimize, workflows.NewOptimizeWorkflow(pipeline))

	// Launch DBOS (must be after workflow registration)
	if err := dbosRuntime.Launch(); err != nil {
		return nil, fmt.Errorf("failed to launch DBOS: %w", err)
	}

	return &Runner{
		runtime: dbosRuntime,
		runner:  workflowRunner,
	}, nil
}

// RunOptimize triggers an optimize workflow for a stored image
func (r *Runner) RunOptimize(ctx context.Context, bucket, key string, makePublic bool) (string, error) {
	return r.runner.RunAsync(ctx, optimize.ProcessRequest{
		Bucket:     bucket,
		Key:        key,
		MakePublic: makePublic,
		Job:        optimize.JobOptimize,
	})
}

// Status retrieves the status of a previously triggered workflow
func (r *Runner) Status(ctx context.Context, runID string) (*workflows.WorkflowStatus, error) {
	return r.runner.GetStatus(ctx, runID)
}

// Shutdown gracefully shuts down the runner
func (r *Runner) Shutdown(timeoutSeconds int) {
	if r.runtime != nil {
		r.runtime.Shutdown(time.Duration(timeoutSeconds) * time.Second)
	}
}
