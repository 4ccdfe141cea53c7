package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"manga-translator/internal/domain"
	apperrors "manga-translator/pkg/errors"
)

// ExportService renders every page of a project into its final translated
// form and packages the results into a zip archive. Pages that cannot be
// rendered are skipped; the export fails only when nothing rendered at all.
type ExportService struct {
	projects   domain.ProjectRepository
	blocks     domain.TextBlockRepository
	images     domain.ImageStore
	caps       *CapabilityRegistry
	typesetter *Typesetter
	logger     domain.Logger
}

// NewExportService wires the export renderer.
func NewExportService(
	projects domain.ProjectRepository,
	blocks domain.TextBlockRepository,
	images domain.ImageStore,
	caps *CapabilityRegistry,
	typesetter *Typesetter,
	logger domain.Logger,
) *ExportService {
	return &ExportService{
		projects:   projects,
		blocks:     blocks,
		images:     images,
		caps:       caps,
		typesetter: typesetter,
		logger:     logger,
	}
}

// Export renders the project and returns the absolute path of the archive.
func (s *ExportService) Export(ctx context.Context, projectID string) (string, error) {
	project, err := s.projects.GetWithPages(projectID)
	if err != nil {
		return "", apperrors.NewNotFoundError("Project not found")
	}
	if len(project.Pages) == 0 {
		return "", apperrors.NewValidationError("Project has no pages to export")
	}

	exportDir := path.Join("exports", project.ID)
	if err := s.images.RemoveAll(exportDir); err != nil {
		return "", apperrors.NewInternalError("Failed to reset export directory", err)
	}

	pages := make([]*domain.Page, len(project.Pages))
	copy(pages, project.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})

	rendered := 0
	for _, page := range pages {
		if err := s.renderPage(ctx, page, exportDir); err != nil {
			// Best-effort per page: a broken page costs one file in the
			// archive, not the whole export.
			s.logger.Error("Page export failed, skipping", err,
				"project_id", project.ID, "page", page.PageNumber)
			continue
		}
		rendered++
	}
	if rendered == 0 {
		return "", apperrors.NewProcessingError("No pages could be rendered", nil)
	}

	archivePath, err := s.packArchive(project, exportDir)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to package export archive", err)
	}

	if err := s.projects.UpdateStatus(project.ID, domain.ProjectStatusExported); err != nil {
		s.logger.Error("Failed to mark project as exported", err, "project_id", project.ID)
	}

	s.logger.Info("Export complete",
		"project_id", project.ID, "pages", rendered, "archive", archivePath)
	return archivePath, nil
}

// renderPage produces the final image for one page under exportDir. Pages
// without text blocks are passed through untouched; pages with blocks get
// their regions erased and retypeset.
func (s *ExportService) renderPage(ctx context.Context, page *domain.Page, exportDir string) error {
	img, err := s.images.Load(page.ImagePath)
	if err != nil {
		return fmt.Errorf("load page image: %w", err)
	}

	blocks, err := s.blocks.GetByPage(page.ID)
	if err != nil {
		return fmt.Errorf("load text blocks: %w", err)
	}

	// Zero-padded prefix keeps reader order identical to page order.
	outPath := path.Join(exportDir, fmt.Sprintf("%04d_%s", page.PageNumber, exportFilename(page.Filename)))

	if len(blocks) == 0 {
		return s.images.Save(outPath, img)
	}

	boxes := make([]domain.BoundingBox, len(blocks))
	for i, block := range blocks {
		boxes[i] = block.Box
	}
	bounds := img.Bounds()
	mask := BuildMask(bounds.Dx(), bounds.Dy(), boxes, DefaultMaskPadding)

	cleaned := img
	if !MaskIsEmpty(mask) {
		s.caps.Acquire()
		cleaned = s.caps.Inpainter.Inpaint(ctx, img, mask)
		s.caps.Release()
	}

	final := s.typesetter.Render(cleaned, blocks)
	return s.images.Save(outPath, final)
}

// exportFilename keeps extensions the store can encode; everything else is
// rewritten to .png so the entry name matches the bytes inside it.
func exportFilename(name string) string {
	ext := path.Ext(name)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return name
	}
	return strings.TrimSuffix(name, ext) + ".png"
}

// packArchive zips every rendered file, in name order, into
// exports/<name>_translated.zip and returns the archive's absolute path.
func (s *ExportService) packArchive(project *domain.Project, exportDir string) (string, error) {
	dirAbs := s.images.AbsPath(exportDir)
	entries, err := os.ReadDir(dirAbs)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	archiveRel := path.Join("exports", safeArchiveName(project.Name)+"_translated.zip")
	archiveAbs := s.images.AbsPath(archiveRel)

	out, err := os.Create(archiveAbs)
	if err != nil {
		return "", err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, name := range names {
		if err := addZipEntry(zw, path.Join(dirAbs, name), name); err != nil {
			zw.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return archiveAbs, nil
}

func addZipEntry(zw *zip.Writer, srcPath, name string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

// safeArchiveName reduces a project name to characters safe in a filename.
func safeArchiveName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}
