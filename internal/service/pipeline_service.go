package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"manga-translator/internal/domain"
	apperrors "manga-translator/pkg/errors"
)

// PipelineService drives a project's pages through the
// Detect → OCR → Translate pipeline. One run processes exactly one project,
// page by page in ascending page_number order; page failures are isolated
// at the page boundary and never abort the run.
type PipelineService struct {
	projects domain.ProjectRepository
	pages    domain.PageRepository
	blocks   domain.TextBlockRepository
	images   domain.ImageStore
	caps     *CapabilityRegistry
	merger   *RegionMerger
	logger   domain.Logger
}

// NewPipelineService wires the orchestrator.
func NewPipelineService(
	projects domain.ProjectRepository,
	pages domain.PageRepository,
	blocks domain.TextBlockRepository,
	images domain.ImageStore,
	caps *CapabilityRegistry,
	logger domain.Logger,
) *PipelineService {
	return &PipelineService{
		projects: projects,
		pages:    pages,
		blocks:   blocks,
		images:   images,
		caps:     caps,
		merger:   NewRegionMerger(),
		logger:   logger,
	}
}

// Start validates the project and launches its run in the background.
// A project whose status is already "processing" is rejected: the status
// flag doubles as a best-effort advisory lock against double runs.
func (s *PipelineService) Start(projectID string) error {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return apperrors.NewNotFoundError("Project not found")
	}
	if project.Status == domain.ProjectStatusProcessing {
		return apperrors.NewConflictError("Pipeline is already running for this project")
	}
	if err := s.projects.UpdateStatus(projectID, domain.ProjectStatusProcessing); err != nil {
		return apperrors.NewInternalError("Failed to mark project as processing", err)
	}

	go s.run(context.Background(), projectID)
	return nil
}

// Status returns the project status and a page count per page status.
func (s *PipelineService) Status(projectID string) (*domain.PipelineStatus, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("Project not found")
	}
	pages, err := s.pages.GetByProject(projectID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load pages", err)
	}

	counts := make(map[string]int)
	for _, page := range pages {
		counts[page.Status]++
	}
	return &domain.PipelineStatus{
		ProjectID:     project.ID,
		ProjectStatus: project.Status,
		TotalPages:    len(pages),
		PageStatuses:  counts,
	}, nil
}

// run is the whole pipeline for one project. It owns the run-level failure
// handling: a failure before the project loads can only be logged, a
// failure after the load attempts the error-status write and swallows (but
// logs) a failure of that write itself.
func (s *PipelineService) run(ctx context.Context, projectID string) {
	project, err := s.projects.GetWithPages(projectID)
	if err != nil {
		s.logger.Error("Pipeline aborted: project could not be loaded", err, "project_id", projectID)
		s.markError(projectID)
		return
	}

	s.logger.Info("Pipeline started",
		"project_id", project.ID,
		"pages", len(project.Pages),
		"source", project.SourceLanguage,
		"target", project.TargetLanguage,
	)

	pages := make([]*domain.Page, len(project.Pages))
	copy(pages, project.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})

	for _, page := range pages {
		if err := s.processPage(ctx, page, project.SourceLanguage, project.TargetLanguage); err != nil {
			// Page-boundary isolation: the page keeps its last committed
			// status and the run moves on.
			s.logger.Error("Page processing failed", err,
				"project_id", project.ID, "page", page.PageNumber)
		}
	}

	if err := s.projects.UpdateStatus(project.ID, domain.ProjectStatusReady); err != nil {
		s.logger.Error("Failed to mark project as ready", err, "project_id", project.ID)
		return
	}
	s.logger.Info("Pipeline complete", "project_id", project.ID)
}

// markError attempts the error-status write. When the write itself fails
// the condition is logged and swallowed; there is nothing further to
// unwind.
func (s *PipelineService) markError(projectID string) {
	if err := s.projects.UpdateStatus(projectID, domain.ProjectStatusError); err != nil {
		s.logger.Error("Failed to mark project as errored", err, "project_id", projectID)
	}
}

// processPage runs one page through detection, OCR and translation,
// committing each status transition so pollers observe forward progress.
func (s *PipelineService) processPage(ctx context.Context, page *domain.Page, sourceLang, targetLang string) error {
	s.logger.Info("Processing page", "page", page.PageNumber, "file", page.Filename)

	// A re-run restarts the page from pending; the reset is committed so
	// pollers observe it before progress resumes.
	if page.Status != domain.PageStatusPending {
		if err := s.setPageStatus(page, domain.PageStatusPending); err != nil {
			return err
		}
	}
	if err := s.setPageStatus(page, domain.PageStatusProcessing); err != nil {
		return err
	}

	// An unreadable image is treated like a page without text, matching a
	// detector that finds nothing.
	var regions []domain.BoundingBox
	img, err := s.images.Load(page.ImagePath)
	if err != nil {
		s.logger.Warn("Could not load page image, treating as empty", "page", page.PageNumber, "error", err)
	} else {
		s.caps.Acquire()
		regions = s.caps.Detector.Detect(ctx, img)
		s.caps.Release()
	}

	if len(regions) == 0 {
		s.logger.Warn("No text regions found", "page", page.PageNumber)
		return s.setPageStatus(page, domain.PageStatusDone)
	}

	merged := s.merger.Merge(regions)
	s.logger.Info("Detected text regions", "page", page.PageNumber, "raw", len(regions), "merged", len(merged))

	type ocrResult struct {
		box  domain.BoundingBox
		text string
	}
	var results []ocrResult
	for _, region := range merged {
		s.caps.Acquire()
		text := s.caps.OCR.ExtractText(ctx, img, region, sourceLang)
		s.caps.Release()
		if text == "" {
			continue // region dropped: nothing readable inside
		}
		results = append(results, ocrResult{box: region, text: text})
	}

	if len(results) == 0 {
		s.logger.Warn("OCR returned no text", "page", page.PageNumber)
		return s.setPageStatus(page, domain.PageStatusDone)
	}

	if err := s.setPageStatus(page, domain.PageStatusOCRDone); err != nil {
		return err
	}

	originals := make([]string, len(results))
	for i, r := range results {
		originals[i] = r.text
	}
	s.caps.Acquire()
	translations := s.caps.Translator.TranslateBatch(ctx, originals, sourceLang, targetLang)
	s.caps.Release()

	// A re-run replaces the blocks it created last time; user-edited
	// blocks stay untouched.
	if err := s.blocks.DeleteUneditedByPage(page.ID); err != nil {
		return err
	}

	blocks := make([]*domain.TextBlock, 0, len(results))
	for i, r := range results {
		original := r.text
		translated := translations[i]
		blocks = append(blocks, &domain.TextBlock{
			ID:             uuid.New().String(),
			PageID:         page.ID,
			Box:            r.box,
			TextOriginal:   &original,
			TextTranslated: &translated,
			FontSize:       domain.DefaultFontSize,
			FontFamily:     domain.DefaultFontFamily,
			TextColor:      domain.DefaultTextColor,
			TextAlignment:  domain.DefaultTextAlignment,
		})
	}
	if err := s.blocks.CreateBatch(blocks); err != nil {
		return err
	}

	if err := s.setPageStatus(page, domain.PageStatusTranslated); err != nil {
		return err
	}
	s.logger.Info("Page done", "page", page.PageNumber, "blocks", len(blocks))
	return nil
}

func (s *PipelineService) setPageStatus(page *domain.Page, status string) error {
	if err := s.pages.UpdateStatus(page.ID, status); err != nil {
		return err
	}
	page.Status = status
	return nil
}
