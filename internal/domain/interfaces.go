package domain

import (
	"context"
	"image"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(project *Project) error
	GetByID(id string) (*Project, error)
	// GetWithPages loads a project with its pages ordered by page_number.
	GetWithPages(id string) (*Project, error)
	List() ([]*ProjectListItem, error)
	UpdateStatus(id string, status string) error
	Delete(id string) error
}

// PageRepository defines persistence operations for pages.
type PageRepository interface {
	CreateBatch(pages []*Page) error
	GetByProject(projectID string) ([]*Page, error)
	UpdateStatus(id string, status string) error
}

// TextBlockRepository defines persistence operations for text blocks.
type TextBlockRepository interface {
	CreateBatch(blocks []*TextBlock) error
	GetByID(id string) (*TextBlock, error)
	GetByPage(pageID string) ([]*TextBlock, error)
	Update(block *TextBlock) error
	// DeleteUneditedByPage removes the blocks a previous run created for a
	// page while preserving user-edited ones.
	DeleteUneditedByPage(pageID string) error
}

// Detector finds text regions on a full page image. Implementations never
// fail: an unusable image or a broken backend yields zero regions.
type Detector interface {
	Detect(ctx context.Context, img image.Image) []BoundingBox
}

// OCR extracts the text inside one region of a page image. May return the
// empty string when the region holds no readable text.
type OCR interface {
	ExtractText(ctx context.Context, img image.Image, region BoundingBox, sourceLang string) string
}

// Translator translates a batch of texts. The result always has the same
// length and order as the input; entries that could not be translated carry
// the "[ERRO] <original>" sentinel instead of an error.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) []string
}

// Inpainter erases the masked pixels of an image, replacing them with
// plausible background. Implementations never fail: the worst case returns
// the input image unchanged.
type Inpainter interface {
	Inpaint(ctx context.Context, img image.Image, mask *image.Gray) image.Image
}

// DetectorBackend is one concrete detection implementation in a fallback
// chain. Backends report failure so the adapter can fall through.
type DetectorBackend interface {
	Name() string
	Detect(ctx context.Context, img image.Image) ([]BoundingBox, error)
}

// OCRBackend is one concrete OCR implementation in a fallback chain.
type OCRBackend interface {
	Name() string
	ExtractText(ctx context.Context, img image.Image, sourceLang string) (string, error)
}

// TranslatorBackend is one concrete translation implementation in a
// fallback chain.
type TranslatorBackend interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error)
}

// InpaintBackend is one concrete inpainting implementation in a fallback
// chain.
type InpaintBackend interface {
	Name() string
	Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error)
}

// ImageStore resolves page image references to decoded images and persists
// derived artifacts under the data directory.
type ImageStore interface {
	Load(relPath string) (image.Image, error)
	Save(relPath string, img image.Image) error
	SaveBytes(relPath string, data []byte) error
	AbsPath(relPath string) string
	Remove(relPath string) error
	RemoveAll(relDir string) error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// ProviderConfig selects the LLM backend used for translation and vision
// OCR. Resolved once at startup and threaded through; the core never
// refreshes credentials mid-run.
type ProviderConfig struct {
	Provider string // "openai", "openrouter", ...
	APIKey   string
	Model    string
	BaseURL  string // empty means the provider default
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetDataDir() string
	GetFontsDir() string
	GetMaxUploadSize() int64
	GetLogLevel() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetProviderConfig() ProviderConfig
	GetDetectorModelPath() string
	GetInpaintServiceURL() string
	GetOCRLanguages() map[string]string
}
