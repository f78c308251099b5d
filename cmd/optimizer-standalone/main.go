package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trailsense/image-optimizer/internal/optimizer"
	"github.com/trailsense/image-optimizer/internal/storage"
	"github.com/trailsense/image-optimizer/internal/workflows"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

// Standalone optimizer for quick testing
// Uses filesystem-backed object storage (./dev-data), no Postgres or S3 needed
func main() {
	httpAddr := os.Getenv("OPTIMIZER_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	storageDir := os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "./dev-data"
	}

	log.Printf("Optimizer Standalone")
	log.Printf("  Mode: Embedded (filesystem storage, synchronous processing)")
	log.Printf("  Storage directory: %s", storageDir)
	log.Printf("  HTTP address: %s", httpAddr)

	store, err := storage.NewFilesystemStore(storageDir)
	if err != nil {
		log.Fatalf("Failed to initialize filesystem store: %v", err)
	}
	log.Printf("✓ Filesystem store initialized")

	pipeline := optimizer.NewPipeline(store)

	// Synchronous-only runner, no DBOS
	workflowRunner := workflows.NewWorkflowRunner(nil)

	optimizeWorkflow := workflows.NewOptimizeWorkflow(pipeline)
	workflowRunner.Register(optimize.JobOptimize, optimizeWorkflow)
	log.Printf("✓ Registered workflow: %s for job: %s", optimizeWorkflow.Name(), optimize.JobOptimize)

	mux := http.NewServeMux()

	handler := &syncHandler{
		workflowRunner: workflowRunner,
		pipeline:       pipeline,
		store:          store,
	}

	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/v1/process", handler.handleProcess)
	mux.HandleFunc("/v1/test", handler.handleTest)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("✓ Optimizer ready on %s", httpAddr)
		log.Printf("")
		log.Printf("Quick test:")
		log.Printf("  curl http://localhost:8080/v1/test")
		log.Printf("")
		log.Printf("Available endpoints:")
		log.Printf("  GET  /health       - Health check")
		log.Printf("  POST /v1/process   - Optimize a stored image (synchronous)")
		log.Printf("  GET  /v1/test      - Run end-to-end test (seed + optimize + report)")
		log.Printf("  GET  /metrics      - Prometheus metrics")
		log.Printf("")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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

// syncHandler holds dependencies for HTTP handlers
type syncHandler struct {
	workflowRunner *workflows.WorkflowRunner
	pipeline       *optimizer.Pipeline
	store          *storage.FilesystemStore
}

// handleProcess handles POST /v1/process synchronously
func (h *syncHandler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req optimize.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	if req.Bucket == "" {
		http.Error(w, "bucket is required", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	if req.Job == "" {
		req.Job = optimize.JobOptimize
	}

	log.Printf("Processing request: bucket=%s, key=%s, job=%s", req.Bucket, req.Key, req.Job)

	runID := uuid.New().String()

	wctx := &workflows.WorkflowContext{
		Ctx:     r.Context(),
		Request: req,
		RunID:   runID,
	}

	result, err := h.workflowRunner.Run(wctx)
	if err != nil {
		log.Printf("[%s] Workflow execution failed: %v", runID, err)
		http.Error(w, fmt.Sprintf("Workflow execution failed: %v", err), http.StatusInternalServerError)
		return
	}

	if !result.Success {
		log.Printf("[%s] Workflow completed with errors: %v", runID, result.Error)
		http.Error(w, fmt.Sprintf("Workflow failed: %v", result.Error), http.StatusInternalServerError)
		return
	}

	log.Printf("[%s] Workflow completed successfully", runID)

	resp := optimize.ProcessResponse{
		RunID: runID,
		URLs:  result.URLs,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// handleTest handles /v1/test: seeds a generated source image into the
// store, runs the full pipeline on it, and reports the size reductions
func (h *syncHandler) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		http.Error(w, "Method not allowed (use GET or POST)", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	log.Println("=== Running End-to-End Test ===")

	log.Println("Step 1: Seeding test image...")
	testImage, err := generateTestJPEG(2400, 1600)
	if err != nil {
		log.Printf("Failed to generate test image: %v", err)
		http.Error(w, fmt.Sprintf("Test image generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	bucket := "test"
	key := fmt.Sprintf("uploads/%s.jpg", uuid.New().String())

	if err := h.store.PutObject(ctx, bucket, key, bytes.NewReader(testImage), int64(len(testImage)), storage.PutOptions{ContentType: "image/jpeg"}); err != nil {
		log.Printf("Failed to seed test image: %v", err)
		http.Error(w, fmt.Sprintf("Seeding failed: %v", err), http.StatusInternalServerError)
		return
	}
	log.Printf("✓ Test image seeded: %s/%s (%d bytes)", bucket, key, len(testImage))

	log.Println("Step 2: Running optimization pipeline...")
	urls, err := h.pipeline.Process(ctx, bucket, key, false)
	if err != nil {
		log.Printf("Pipeline failed: %v", err)
		http.Error(w, fmt.Sprintf("Pipeline failed: %v", err), http.StatusInternalServerError)
		return
	}
	log.Printf("✓ Pipeline completed: %d variant(s)", len(urls))

	log.Println("Step 3: Computing optimization stats...")
	sizes := make(map[string]int64, len(urls))
	for name := range urls {
		rc, err := h.store.GetObject(ctx, bucket, optimizer.DeriveKey(key, name))
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		sizes[name] = int64(len(data))
	}
	report := optimizer.Stats(int64(len(testImage)), sizes)

	log.Println("=== Test Complete ===")

	response := map[string]interface{}{
		"test_status": "success",
		"bucket":      bucket,
		"key":         key,
		"urls":        urls,
		"stats":       report,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleHealth returns health status
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"mode":   "standalone",
	})
}

// generateTestJPEG renders a gradient image and encodes it as JPEG
func generateTestJPEG(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) * 255 / (width + height)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
