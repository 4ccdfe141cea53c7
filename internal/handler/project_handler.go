package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"manga-translator/internal/domain"
	"manga-translator/internal/service"
)

// ProjectHandler handles project and text block HTTP requests
type ProjectHandler struct {
	projectService *service.ProjectService
	maxUploadSize  int64
	logger         domain.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *service.ProjectService, maxUploadSize int64, logger domain.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		maxUploadSize:  maxUploadSize,
		logger:         logger,
	}
}

// CreateProject handles POST /projects: a multipart form with the project
// metadata and a zip or image upload.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form or upload too large")
		return
	}

	name := r.FormValue("name")
	sourceLang := r.FormValue("source_language")
	targetLang := r.FormValue("target_language")

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'file' upload")
		return
	}
	defer file.Close()

	project, err := h.projectService.CreateProject(name, sourceLang, targetLang, header.Filename, file)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := h.projectService.ListProjects()
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if items == nil {
		items = make([]*domain.ProjectListItem, 0)
	}
	writeJSON(w, http.StatusOK, items)
}

// GetProject handles GET /projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	project, err := h.projectService.GetProject(projectID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	if err := h.projectService.DeleteProject(projectID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateTextBlock handles PATCH /textblocks/{id}: a partial update whose
// absent fields are left untouched.
func (h *ProjectHandler) UpdateTextBlock(w http.ResponseWriter, r *http.Request) {
	blockID := mux.Vars(r)["id"]

	var update domain.TextBlockUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	block, err := h.projectService.UpdateTextBlock(blockID, &update)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}
