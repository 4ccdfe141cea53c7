package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"manga-translator/internal/domain"
	"manga-translator/internal/service"
)

// ExportHandler handles export HTTP requests
type ExportHandler struct {
	exportService *service.ExportService
	logger        domain.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService, logger domain.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// ExportProject handles GET /export/projects/{projectId}. Rendering runs
// synchronously and the finished archive is streamed back as a download.
func (h *ExportHandler) ExportProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	archivePath, err := h.exportService.Export(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename=%q`, filepath.Base(archivePath)))
	http.ServeFile(w, r, archivePath)
}
