package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"manga-translator/internal/domain"
)

func multipartUpload(t *testing.T, name, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", name); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := mw.WriteField("source_language", "ja"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := mw.WriteField("target_language", "en"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProjectHandler_CreateProject(t *testing.T) {
	router, store := newTestRouter(t)

	body, contentType := multipartUpload(t, "My Manga", "cover.png", smallPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rr.Code, rr.Body.String())
	}

	var project domain.Project
	if err := json.NewDecoder(rr.Body).Decode(&project); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if project.Name != "My Manga" || project.Status != domain.ProjectStatusReady {
		t.Errorf("project = %+v", project)
	}
	if len(project.Pages) != 1 {
		t.Errorf("pages = %d, want 1", len(project.Pages))
	}
	if len(store.projects) != 1 {
		t.Errorf("persisted projects = %d, want 1", len(store.projects))
	}
}

func TestProjectHandler_CreateProjectMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "No File")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestProjectHandler_GetProjectNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/unknown", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestProjectHandler_ListProjectsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("body = %s, want an empty JSON array", rr.Body.String())
	}
}

func TestProjectHandler_UpdateTextBlock(t *testing.T) {
	router, store := newTestRouter(t)
	store.blocks["b1"] = &domain.TextBlock{ID: "b1", PageID: "pg1", FontSize: 18}

	payload := `{"text_translated":"edited line","font_size":24}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/textblocks/b1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var block domain.TextBlock
	if err := json.NewDecoder(rr.Body).Decode(&block); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if block.TextTranslated == nil || *block.TextTranslated != "edited line" {
		t.Errorf("TextTranslated = %v", block.TextTranslated)
	}
	if block.FontSize != 24 || !block.IsEdited {
		t.Errorf("block = %+v, want font applied and edited flag", block)
	}
}

func TestProjectHandler_UpdateTextBlockInvalid(t *testing.T) {
	router, store := newTestRouter(t)
	store.blocks["b1"] = &domain.TextBlock{ID: "b1", PageID: "pg1"}

	tests := []struct {
		name    string
		blockID string
		payload string
		want    int
	}{
		{name: "Bad color", blockID: "b1", payload: `{"text_color":"red"}`, want: http.StatusBadRequest},
		{name: "Zero font size", blockID: "b1", payload: `{"font_size":0}`, want: http.StatusBadRequest},
		{name: "Unknown block", blockID: "zzz", payload: `{"font_size":20}`, want: http.StatusNotFound},
		{name: "Malformed JSON", blockID: "b1", payload: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/textblocks/"+tt.blockID, strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestProjectHandler_DeleteProject(t *testing.T) {
	router, store := newTestRouter(t)
	store.projects["p1"] = &domain.Project{ID: "p1", Name: "Gone"}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/projects/p1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if _, exists := store.projects["p1"]; exists {
		t.Error("project should be deleted")
	}
}
