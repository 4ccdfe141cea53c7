package service

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"manga-translator/internal/domain"
	apperrors "manga-translator/pkg/errors"
)

// imageExtensions lists the page-image formats accepted inside an upload.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// ProjectService manages project lifecycle: creation from an upload, listing,
// detail retrieval, deletion and user edits to text blocks.
type ProjectService struct {
	projects domain.ProjectRepository
	pages    domain.PageRepository
	blocks   domain.TextBlockRepository
	images   domain.ImageStore
	logger   domain.Logger
}

// NewProjectService wires the project service.
func NewProjectService(
	projects domain.ProjectRepository,
	pages domain.PageRepository,
	blocks domain.TextBlockRepository,
	images domain.ImageStore,
	logger domain.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		pages:    pages,
		blocks:   blocks,
		images:   images,
		logger:   logger,
	}
}

// CreateProject registers a project from a zip archive or a single image
// upload. Page numbers follow the natural sort order of the extracted
// filenames, starting at 1.
func (s *ProjectService) CreateProject(name, sourceLang, targetLang, filename string, upload io.Reader) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("Project name is required")
	}
	if sourceLang == "" {
		sourceLang = "ja"
	}
	if targetLang == "" {
		targetLang = "pt-br"
	}

	project := &domain.Project{
		ID:             uuid.New().String(),
		Name:           name,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Status:         domain.ProjectStatusProcessing,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.projects.Create(project); err != nil {
		return nil, apperrors.NewInternalError("Failed to create project", err)
	}
	s.logger.Info("Created project", "project_id", project.ID, "name", name)

	imagePaths, err := s.ingestUpload(project.ID, filename, upload)
	if err != nil {
		// Roll back the half-created project so a bad upload leaves no trace.
		s.cleanupProject(project.ID)
		return nil, err
	}

	pageRecords := make([]*domain.Page, len(imagePaths))
	for i, imgPath := range imagePaths {
		pageRecords[i] = &domain.Page{
			ID:         uuid.New().String(),
			ProjectID:  project.ID,
			Filename:   path.Base(imgPath),
			PageNumber: i + 1,
			ImagePath:  imgPath,
			Status:     domain.PageStatusPending,
		}
	}
	if err := s.pages.CreateBatch(pageRecords); err != nil {
		s.cleanupProject(project.ID)
		return nil, apperrors.NewInternalError("Failed to register pages", err)
	}

	if err := s.projects.UpdateStatus(project.ID, domain.ProjectStatusReady); err != nil {
		return nil, apperrors.NewInternalError("Failed to finalize project", err)
	}
	s.logger.Info("Pages registered", "project_id", project.ID, "pages", len(pageRecords))

	full, err := s.projects.GetWithPages(project.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to reload project", err)
	}
	return full, nil
}

// ListProjects returns all projects, newest first, with page counts.
func (s *ProjectService) ListProjects() ([]*domain.ProjectListItem, error) {
	items, err := s.projects.List()
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list projects", err)
	}
	return items, nil
}

// GetProject returns one project with its pages and text blocks.
func (s *ProjectService) GetProject(projectID string) (*domain.Project, error) {
	project, err := s.projects.GetWithPages(projectID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("Project not found")
	}

	for _, page := range project.Pages {
		blocks, err := s.blocks.GetByPage(page.ID)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to load text blocks", err)
		}
		page.TextBlocks = blocks
	}
	return project, nil
}

// DeleteProject removes the project record and the files under its data
// directory.
func (s *ProjectService) DeleteProject(projectID string) error {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return apperrors.NewNotFoundError("Project not found")
	}
	if err := s.projects.Delete(projectID); err != nil {
		return apperrors.NewInternalError("Failed to delete project", err)
	}
	// Source images, rendered pages and the export archive all go with
	// the project.
	if err := s.images.RemoveAll(path.Join("projects", projectID)); err != nil {
		s.logger.Warn("Failed to remove project files", "project_id", projectID, "error", err)
	}
	if err := s.images.RemoveAll(path.Join("exports", projectID)); err != nil {
		s.logger.Warn("Failed to remove export files", "project_id", projectID, "error", err)
	}
	archive := path.Join("exports", safeArchiveName(project.Name)+"_translated.zip")
	if err := s.images.Remove(archive); err != nil {
		s.logger.Warn("Failed to remove export archive", "project_id", projectID, "error", err)
	}
	return nil
}

// UpdateTextBlock applies a partial edit to a text block. Any accepted edit
// marks the block as edited, which protects it from pipeline re-runs.
func (s *ProjectService) UpdateTextBlock(blockID string, update *domain.TextBlockUpdate) (*domain.TextBlock, error) {
	if err := update.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	block, err := s.blocks.GetByID(blockID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("Text block not found")
	}

	update.Apply(block)
	if err := s.blocks.Update(block); err != nil {
		return nil, apperrors.NewInternalError("Failed to update text block", err)
	}
	s.logger.Info("Text block updated", "block_id", blockID)
	return block, nil
}

// ingestUpload stores the upload's images under projects/<id>/ and returns
// their relative paths in natural sort order.
func (s *ProjectService) ingestUpload(projectID, filename string, upload io.Reader) ([]string, error) {
	dir := path.Join("projects", projectID)

	data, err := io.ReadAll(upload)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to read upload", err)
	}

	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".zip"):
		if err := s.extractArchive(dir, data); err != nil {
			return nil, err
		}
	case isImageFile(filename):
		if err := s.images.SaveBytes(path.Join(dir, path.Base(filename)), data); err != nil {
			return nil, apperrors.NewInternalError("Failed to store image", err)
		}
	default:
		return nil, apperrors.NewValidationError("Unsupported file type", filename)
	}

	paths, err := s.collectImages(dir)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to scan project images", err)
	}
	if len(paths) == 0 {
		return nil, apperrors.NewValidationError("No valid images found in the upload")
	}
	return paths, nil
}

// extractArchive writes every image member of the zip flat into dir,
// discarding the archive's internal folder structure.
func (s *ProjectService) extractArchive(dir string, data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return apperrors.NewValidationError("Corrupted zip archive", err.Error())
	}

	for _, member := range zr.File {
		base := path.Base(strings.ReplaceAll(member.Name, "\\", "/"))
		// Skip directories and hidden/system entries like __MACOSX.
		if base == "" || base == "." || strings.HasPrefix(base, ".") || strings.HasPrefix(base, "__") {
			continue
		}
		if member.FileInfo().IsDir() || !isImageFile(base) {
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return apperrors.NewValidationError("Corrupted zip archive", err.Error())
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return apperrors.NewValidationError("Corrupted zip archive", err.Error())
		}
		if err := s.images.SaveBytes(path.Join(dir, base), content); err != nil {
			return apperrors.NewInternalError("Failed to store extracted image", err)
		}
	}
	return nil
}

// collectImages lists the image files under dir, naturally sorted so
// "page2" orders before "page10".
func (s *ProjectService) collectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.images.AbsPath(dir))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && isImageFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = path.Join(dir, name)
	}
	return paths, nil
}

func (s *ProjectService) cleanupProject(projectID string) {
	if err := s.projects.Delete(projectID); err != nil {
		s.logger.Warn("Failed to roll back project record", "project_id", projectID, "error", err)
	}
	if err := s.images.RemoveAll(path.Join("projects", projectID)); err != nil {
		s.logger.Warn("Failed to roll back project files", "project_id", projectID, "error", err)
	}
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// naturalLess compares filenames chunk-wise so embedded numbers sort
// numerically instead of lexicographically.
func naturalLess(a, b string) bool {
	ca, cb := splitChunks(a), splitChunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		na, aOK := parseIntChunk(ca[i])
		nb, bOK := parseIntChunk(cb[i])
		if aOK && bOK {
			if na != nb {
				return na < nb
			}
			continue
		}
		la, lb := strings.ToLower(ca[i]), strings.ToLower(cb[i])
		if la == lb {
			continue
		}
		return la < lb
	}
	return len(ca) < len(cb)
}

func splitChunks(s string) []string {
	var chunks []string
	start := 0
	digit := false
	for i, r := range s {
		d := r >= '0' && r <= '9'
		if i == 0 {
			digit = d
			continue
		}
		if d != digit {
			chunks = append(chunks, s[start:i])
			start = i
			digit = d
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

func parseIntChunk(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
