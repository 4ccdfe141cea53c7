package config

import (
	"fmt"

	"manga-translator/internal/domain"
	"manga-translator/internal/infra/supabase"
	"manga-translator/internal/repository"
	"manga-translator/internal/service"
	"manga-translator/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient *supabase.Client

	ProjectRepository   domain.ProjectRepository
	PageRepository      domain.PageRepository
	TextBlockRepository domain.TextBlockRepository

	ImageStore   domain.ImageStore
	Fonts        *service.FontLibrary
	Capabilities *service.CapabilityRegistry

	ProjectService  *service.ProjectService
	PipelineService *service.PipelineService
	ExportService   *service.ExportService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Initialize Supabase client
	supabaseClient := supabase.NewClient(config, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize supabase: %w", err)
	}

	// Initialize repositories
	projectRepo := repository.NewSupabaseProjectRepository(supabaseClient, appLogger)
	pageRepo := repository.NewSupabasePageRepository(supabaseClient, appLogger)
	blockRepo := repository.NewSupabaseTextBlockRepository(supabaseClient, appLogger)

	// Initialize storage and rendering infrastructure
	imageStore, err := service.NewLocalImageStore(config.GetDataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	fonts := service.NewFontLibrary(config.GetFontsDir(), appLogger)
	capabilities := service.NewCapabilityRegistry(config, appLogger)
	typesetter := service.NewTypesetter(fonts, appLogger)

	// Initialize services
	projectService := service.NewProjectService(projectRepo, pageRepo, blockRepo, imageStore, appLogger)
	pipelineService := service.NewPipelineService(projectRepo, pageRepo, blockRepo, imageStore, capabilities, appLogger)
	exportService := service.NewExportService(projectRepo, blockRepo, imageStore, capabilities, typesetter, appLogger)

	return &Container{
		Config:         config,
		Logger:         appLogger,
		SupabaseClient: supabaseClient,

		ProjectRepository:   projectRepo,
		PageRepository:      pageRepo,
		TextBlockRepository: blockRepo,

		ImageStore:   imageStore,
		Fonts:        fonts,
		Capabilities: capabilities,

		ProjectService:  projectService,
		PipelineService: pipelineService,
		ExportService:   exportService,
	}, nil
}

// Close releases the resources held by capability providers.
func (c *Container) Close() {
	if c.Capabilities != nil {
		c.Capabilities.Close()
	}
}
