package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailsense/image-optimizer/internal/workflows"
)

func TestHandleProcessAsyncValidation(t *testing.T) {
	handler := NewAsyncHandler(workflows.NewWorkflowRunner(nil), nil)

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"method not allowed", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing bucket", http.MethodPost, `{"key":"a.jpg"}`, http.StatusBadRequest},
		{"missing key", http.MethodPost, `{"bucket":"media"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/process", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.HandleProcessAsync(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleStatusRequiresRunID(t *testing.T) {
	handler := NewAsyncHandler(workflows.NewWorkflowRunner(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/", nil)
	rec := httptest.NewRecorder()

	handler.HandleStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
