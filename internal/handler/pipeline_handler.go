package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"manga-translator/internal/domain"
	"manga-translator/internal/service"
)

// PipelineHandler handles pipeline control HTTP requests
type PipelineHandler struct {
	pipelineService *service.PipelineService
	logger          domain.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(pipelineService *service.PipelineService, logger domain.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipelineService: pipelineService,
		logger:          logger,
	}
}

// StartPipeline handles POST /pipeline/{projectId}/start. The run proceeds
// in the background; the response only acknowledges the launch.
func (h *PipelineHandler) StartPipeline(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	if err := h.pipelineService.Start(projectID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"project_id": projectID,
		"status":     "processing",
	})
}

// PipelineStatus handles GET /pipeline/{projectId}/status
func (h *PipelineHandler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	status, err := h.pipelineService.Status(projectID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
