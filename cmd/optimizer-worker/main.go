package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trailsense/image-optimizer/internal/dbosruntime"
	"github.com/trailsense/image-optimizer/internal/dedupe"
	"github.com/trailsense/image-optimizer/internal/handlers"
	"github.com/trailsense/image-optimizer/internal/optimizer"
	"github.com/trailsense/image-optimizer/internal/storage"
	"github.com/trailsense/image-optimizer/internal/workflows"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	httpAddr := os.Getenv("WORKER_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8081"
	}

	// S3 object store from environment
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	useSSL := true
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("Invalid S3_USE_SSL value %q: %v", v, err)
		}
		useSSL = parsed
	}

	store, err := storage.NewS3Store(storage.S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Region:    os.Getenv("S3_REGION"),
		UseSSL:    useSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize S3 store: %v", err)
	}
	log.Printf("✓ S3 store initialized (endpoint: %s)", endpoint)

	pipeline := optimizer.NewPipeline(store)

	// DBOS runtime (required for the async worker)
	dbURL := os.Getenv("DBOS_SYSTEM_DATABASE_URL")
	if dbURL == "" {
		log.Fatalf("DBOS_SYSTEM_DATABASE_URL is required")
	}

	queueName := os.Getenv("DBOS_QUEUE_NAME")
	if queueName == "" {
		queueName = "optimize"
	}

	concurrency := 4
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			log.Fatalf("Invalid WORKER_CONCURRENCY value %q", v)
		}
		concurrency = parsed
	}

	dbosRuntime, err := dbosruntime.NewRuntime(context.Background(), dbosruntime.Config{
		DatabaseURL: dbURL,
		AppName:     "optimizer-worker",
		QueueName:   queueName,
		Concurrency: concurrency,
	})
	if err != nil {
		log.Fatalf("Failed to initialize DBOS: %v", err)
	}

	// Workflow runner with DBOS support (registers workflows with DBOS)
	workflowRunner := workflows.NewWorkflowRunner(dbosRuntime)

	optimizeWorkflow := workflows.NewOptimizeWorkflow(pipeline)
	workflowRunner.Register(optimize.JobOptimize, optimizeWorkflow)
	log.Printf("✓ Registered workflow: %s for job: %s", optimizeWorkflow.Name(), optimize.JobOptimize)

	// Launch DBOS (must be done after workflow registration)
	if err := dbosRuntime.Launch(); err != nil {
		log.Fatalf("Failed to launch DBOS: %v", err)
	}
	defer dbosRuntime.Shutdown(10 * time.Second)

	log.Printf("✓ DBOS runtime initialized")
	log.Printf("  Queue: %s", dbosRuntime.QueueName())
	log.Printf("  Concurrency: %d", dbosRuntime.Concurrency())

	// Dedupe ledger on the same Postgres instance
	dedupeTracker, err := dedupe.NewTracker(dbosRuntime.DB())
	if err != nil {
		log.Fatalf("Failed to initialize dedupe tracker: %v", err)
	}

	mux := http.NewServeMux()

	asyncHandler := handlers.NewAsyncHandler(workflowRunner, dedupeTracker)

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/v1/process", asyncHandler.HandleProcessAsync)
	mux.HandleFunc("/v1/runs/", asyncHandler.HandleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("✓ Registered async endpoints")

	server := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("Optimizer worker starting on %s", httpAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// handleHealth returns health status
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}
