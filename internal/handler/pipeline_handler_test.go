package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"manga-translator/internal/domain"
)

func TestPipelineHandler_StartUnknownProject(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/unknown/start", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestPipelineHandler_StartConflict(t *testing.T) {
	router, store := newTestRouter(t)
	store.projects["p1"] = &domain.Project{ID: "p1", Status: domain.ProjectStatusProcessing}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/p1/start", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for an already-running pipeline", rr.Code)
	}
}

func TestPipelineHandler_StartAccepted(t *testing.T) {
	router, store := newTestRouter(t)
	store.projects["p1"] = &domain.Project{ID: "p1", Status: domain.ProjectStatusReady}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/p1/start", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["project_id"] != "p1" || resp["status"] != "processing" {
		t.Errorf("response = %v", resp)
	}
}

func TestPipelineHandler_Status(t *testing.T) {
	router, store := newTestRouter(t)
	store.projects["p1"] = &domain.Project{ID: "p1", Status: domain.ProjectStatusProcessing}
	store.pages["p1"] = []*domain.Page{
		{ID: "pg1", ProjectID: "p1", PageNumber: 1, Status: domain.PageStatusTranslated},
		{ID: "pg2", ProjectID: "p1", PageNumber: 2, Status: domain.PageStatusPending},
		{ID: "pg3", ProjectID: "p1", PageNumber: 3, Status: domain.PageStatusPending},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/p1/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var status domain.PipelineStatus
	if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if status.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", status.TotalPages)
	}
	if status.PageStatuses[domain.PageStatusPending] != 2 ||
		status.PageStatuses[domain.PageStatusTranslated] != 1 {
		t.Errorf("PageStatuses = %v", status.PageStatuses)
	}
	if status.ProjectStatus != domain.ProjectStatusProcessing {
		t.Errorf("ProjectStatus = %q", status.ProjectStatus)
	}
}

func TestExportHandler_UnknownProject(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/projects/unknown", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
