package service

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"

	"manga-translator/internal/domain"
)

// Mock implementations for testing

type MockLogger struct{}

func (l *MockLogger) Info(msg string, fields ...interface{})             {}
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockLogger) Warn(msg string, fields ...interface{})             {}

type MockProjectRepository struct {
	mu            sync.Mutex
	projects      map[string]*domain.Project
	pages         map[string][]*domain.Page
	statusHistory map[string][]string

	getErr    error
	updateErr error
}

func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{
		projects:      make(map[string]*domain.Project),
		pages:         make(map[string][]*domain.Page),
		statusHistory: make(map[string][]string),
	}
}

func (m *MockProjectRepository) Create(project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.ID] = project
	return nil
}

func (m *MockProjectRepository) GetByID(id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if project, exists := m.projects[id]; exists {
		return project, nil
	}
	return nil, domain.ErrProjectNotFound
}

func (m *MockProjectRepository) GetWithPages(id string) (*domain.Project, error) {
	project, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pages := make([]*domain.Page, len(m.pages[id]))
	copy(pages, m.pages[id])
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
	project.Pages = pages
	return project, nil
}

func (m *MockProjectRepository) List() ([]*domain.ProjectListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]*domain.ProjectListItem, 0, len(m.projects))
	for _, project := range m.projects {
		items = append(items, &domain.ProjectListItem{
			ID:        project.ID,
			Name:      project.Name,
			Status:    project.Status,
			PageCount: len(m.pages[project.ID]),
		})
	}
	return items, nil
}

func (m *MockProjectRepository) UpdateStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	project, exists := m.projects[id]
	if !exists {
		return domain.ErrProjectNotFound
	}
	project.Status = status
	m.statusHistory[id] = append(m.statusHistory[id], status)
	return nil
}

func (m *MockProjectRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[id]; !exists {
		return domain.ErrProjectNotFound
	}
	delete(m.projects, id)
	delete(m.pages, id)
	return nil
}

type MockPageRepository struct {
	mu            sync.Mutex
	projects      *MockProjectRepository
	statusHistory map[string][]string
}

func NewMockPageRepository(projects *MockProjectRepository) *MockPageRepository {
	return &MockPageRepository{
		projects:      projects,
		statusHistory: make(map[string][]string),
	}
}

func (m *MockPageRepository) CreateBatch(pages []*domain.Page) error {
	m.projects.mu.Lock()
	defer m.projects.mu.Unlock()
	for _, page := range pages {
		m.projects.pages[page.ProjectID] = append(m.projects.pages[page.ProjectID], page)
	}
	return nil
}

func (m *MockPageRepository) GetByProject(projectID string) ([]*domain.Page, error) {
	m.projects.mu.Lock()
	defer m.projects.mu.Unlock()
	return m.projects.pages[projectID], nil
}

func (m *MockPageRepository) UpdateStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusHistory[id] = append(m.statusHistory[id], status)
	return nil
}

func (m *MockPageRepository) history(pageID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusHistory[pageID]
}

type MockTextBlockRepository struct {
	mu           sync.Mutex
	blocks       map[string]*domain.TextBlock
	deletedPages []string
	getByPageErr error
}

func NewMockTextBlockRepository() *MockTextBlockRepository {
	return &MockTextBlockRepository{
		blocks: make(map[string]*domain.TextBlock),
	}
}

func (m *MockTextBlockRepository) CreateBatch(blocks []*domain.TextBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, block := range blocks {
		m.blocks[block.ID] = block
	}
	return nil
}

func (m *MockTextBlockRepository) GetByID(id string) (*domain.TextBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if block, exists := m.blocks[id]; exists {
		return block, nil
	}
	return nil, domain.ErrTextBlockNotFound
}

func (m *MockTextBlockRepository) GetByPage(pageID string) ([]*domain.TextBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getByPageErr != nil {
		return nil, m.getByPageErr
	}
	var blocks []*domain.TextBlock
	for _, block := range m.blocks {
		if block.PageID == pageID {
			blocks = append(blocks, block)
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	return blocks, nil
}

func (m *MockTextBlockRepository) Update(block *domain.TextBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blocks[block.ID]; !exists {
		return domain.ErrTextBlockNotFound
	}
	m.blocks[block.ID] = block
	return nil
}

func (m *MockTextBlockRepository) DeleteUneditedByPage(pageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedPages = append(m.deletedPages, pageID)
	for id, block := range m.blocks {
		if block.PageID == pageID && !block.IsEdited {
			delete(m.blocks, id)
		}
	}
	return nil
}

func (m *MockTextBlockRepository) countByPage(pageID string) int {
	blocks, _ := m.GetByPage(pageID)
	return len(blocks)
}

// Scripted capability backends

type scriptDetector struct {
	name  string
	boxes []domain.BoundingBox
	err   error
	calls int
}

func (d *scriptDetector) Name() string { return d.name }

func (d *scriptDetector) Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.boxes, nil
}

type scriptOCR struct {
	name string
	text string
	err  error
}

func (o *scriptOCR) Name() string { return o.name }

func (o *scriptOCR) ExtractText(ctx context.Context, img image.Image, sourceLang string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return o.text, nil
}

type scriptTranslator struct {
	name   string
	prefix string
	err    error
}

func (t *scriptTranslator) Name() string { return t.name }

func (t *scriptTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return t.prefix + text, nil
}

func (t *scriptTranslator) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = t.prefix + text
	}
	return out, nil
}

type scriptInpainter struct {
	name  string
	err   error
	calls int
}

func (p *scriptInpainter) Name() string { return p.name }

func (p *scriptInpainter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return img, nil
}

var errBackendDown = errors.New("backend down")

// fakeRegistry builds a capability registry around scripted backends.
func fakeRegistry(det domain.DetectorBackend, ocr domain.OCRBackend, tr domain.TranslatorBackend, inp domain.InpaintBackend) *CapabilityRegistry {
	logger := &MockLogger{}
	return &CapabilityRegistry{
		Detector:   NewDetectorAdapter([]domain.DetectorBackend{det}, logger),
		OCR:        NewOCRAdapter([]domain.OCRBackend{ocr}, logger),
		Translator: NewTranslatorAdapter([]domain.TranslatorBackend{tr}, logger),
		Inpainter:  NewInpaintAdapter([]domain.InpaintBackend{inp}, logger),
	}
}

// fixedMeasurer reports a constant per-rune advance, making layout output
// exactly predictable.
type fixedMeasurer struct {
	charWidth float64
}

func (m *fixedMeasurer) LineWidth(text, family string, size int) float64 {
	return m.charWidth * float64(size) * float64(len([]rune(text)))
}
