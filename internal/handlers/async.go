package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/trailsense/image-optimizer/internal/dedupe"
	"github.com/trailsense/image-optimizer/internal/workflows"
	"github.com/trailsense/image-optimizer/pkg/optimize"
)

// AsyncHandler handles asynchronous optimization requests
type AsyncHandler struct {
	workflowRunner *workflows.WorkflowRunner
	dedupeTracker  *dedupe.Tracker
}

// NewAsyncHandler creates a new async handler. The dedupe tracker is
// optional.
func NewAsyncHandler(runner *workflows.WorkflowRunner, tracker *dedupe.Tracker) *AsyncHandler {
	return &AsyncHandler{
		workflowRunner: runner,
		dedupeTracker:  tracker,
	}
}

// HandleProcessAsync handles POST /v1/process - enqueues a workflow and
// returns immediately
func (h *AsyncHandler) HandleProcessAsync(w http.ResponseWriter, r *http.Request) {
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

	log.Printf("Enqueueing workflow: bucket=%s, key=%s, job=%s", req.Bucket, req.Key, req.Job)

	seenCount := 0
	if h.dedupeTracker != nil {
		count, err := h.dedupeTracker.Record(r.Context(), req.Bucket, req.Key)
		if err != nil {
			// Dedupe is advisory; don't fail the request over it
			log.Printf("Failed to record dedupe for %s/%s: %v", req.Bucket, req.Key, err)
		} else {
			seenCount = count
		}
	}

	runID, err := h.workflowRunner.RunAsync(r.Context(), req)
	if err != nil {
		log.Printf("Failed to enqueue workflow: %v", err)
		http.Error(w, fmt.Sprintf("Failed to enqueue workflow: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("Workflow enqueued successfully: run_id=%s", runID)

	resp := optimize.ProcessResponse{
		RunID:           runID,
		DedupeSeenCount: seenCount,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}

// HandleStatus handles GET /v1/runs/{runID} - returns workflow status
func (h *AsyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runID := r.URL.Path[len("/v1/runs/"):]
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	status, err := h.workflowRunner.GetStatus(r.Context(), runID)
	if err != nil {
		log.Printf("Failed to get workflow status: %v", err)
		http.Error(w, "Workflow not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
