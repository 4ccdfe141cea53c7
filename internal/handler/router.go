package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"manga-translator/internal/config"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"manga-translator"}`))
	}).Methods("GET")

	// Initialize handlers
	projectHandler := NewProjectHandler(
		container.ProjectService,
		container.Config.GetMaxUploadSize(),
		container.Logger,
	)
	pipelineHandler := NewPipelineHandler(container.PipelineService, container.Logger)
	exportHandler := NewExportHandler(container.ExportService, container.Logger)

	// Project routes
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")

	// Text block routes
	api.HandleFunc("/textblocks/{id}", projectHandler.UpdateTextBlock).Methods("PATCH")

	// Pipeline routes
	api.HandleFunc("/pipeline/{projectId}/start", pipelineHandler.StartPipeline).Methods("POST")
	api.HandleFunc("/pipeline/{projectId}/status", pipelineHandler.PipelineStatus).Methods("GET")

	// Export routes
	api.HandleFunc("/export/projects/{projectId}", exportHandler.ExportProject).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:4173", // Vite preview
			"http://localhost:3000", // Alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(router)
}
