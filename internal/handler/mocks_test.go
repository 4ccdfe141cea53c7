package handler

import (
	"net/http"
	"sort"
	"sync"
	"testing"

	"manga-translator/internal/config"
	"manga-translator/internal/domain"
	"manga-translator/internal/service"
)

// Mock implementations for testing

type MockHandlerLogger struct{}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})             {}
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})            {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})             {}

type mockStore struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	pages    map[string][]*domain.Page
	blocks   map[string]*domain.TextBlock
}

func newMockStore() *mockStore {
	return &mockStore{
		projects: make(map[string]*domain.Project),
		pages:    make(map[string][]*domain.Page),
		blocks:   make(map[string]*domain.TextBlock),
	}
}

type mockProjectRepo struct{ store *mockStore }

func (m *mockProjectRepo) Create(project *domain.Project) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(id string) (*domain.Project, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if project, exists := m.store.projects[id]; exists {
		return project, nil
	}
	return nil, domain.ErrProjectNotFound
}

func (m *mockProjectRepo) GetWithPages(id string) (*domain.Project, error) {
	project, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	pages := make([]*domain.Page, len(m.store.pages[id]))
	copy(pages, m.store.pages[id])
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	project.Pages = pages
	return project, nil
}

func (m *mockProjectRepo) List() ([]*domain.ProjectListItem, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	items := make([]*domain.ProjectListItem, 0, len(m.store.projects))
	for _, project := range m.store.projects {
		items = append(items, &domain.ProjectListItem{
			ID:        project.ID,
			Name:      project.Name,
			Status:    project.Status,
			PageCount: len(m.store.pages[project.ID]),
		})
	}
	return items, nil
}

func (m *mockProjectRepo) UpdateStatus(id string, status string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	project, exists := m.store.projects[id]
	if !exists {
		return domain.ErrProjectNotFound
	}
	project.Status = status
	return nil
}

func (m *mockProjectRepo) Delete(id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	delete(m.store.projects, id)
	delete(m.store.pages, id)
	return nil
}

type mockPageRepo struct{ store *mockStore }

func (m *mockPageRepo) CreateBatch(pages []*domain.Page) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, page := range pages {
		m.store.pages[page.ProjectID] = append(m.store.pages[page.ProjectID], page)
	}
	return nil
}

func (m *mockPageRepo) GetByProject(projectID string) ([]*domain.Page, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.store.pages[projectID], nil
}

func (m *mockPageRepo) UpdateStatus(id string, status string) error {
	return nil
}

type mockBlockRepo struct{ store *mockStore }

func (m *mockBlockRepo) CreateBatch(blocks []*domain.TextBlock) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, block := range blocks {
		m.store.blocks[block.ID] = block
	}
	return nil
}

func (m *mockBlockRepo) GetByID(id string) (*domain.TextBlock, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if block, exists := m.store.blocks[id]; exists {
		return block, nil
	}
	return nil, domain.ErrTextBlockNotFound
}

func (m *mockBlockRepo) GetByPage(pageID string) ([]*domain.TextBlock, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var blocks []*domain.TextBlock
	for _, block := range m.store.blocks {
		if block.PageID == pageID {
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

func (m *mockBlockRepo) Update(block *domain.TextBlock) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.blocks[block.ID] = block
	return nil
}

func (m *mockBlockRepo) DeleteUneditedByPage(pageID string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for id, block := range m.store.blocks {
		if block.PageID == pageID && !block.IsEdited {
			delete(m.store.blocks, id)
		}
	}
	return nil
}

// newTestRouter wires the full HTTP surface over in-memory repositories and
// capability chains with no backends.
func newTestRouter(t *testing.T) (http.Handler, *mockStore) {
	t.Helper()

	store := newMockStore()
	projects := &mockProjectRepo{store: store}
	pages := &mockPageRepo{store: store}
	blocks := &mockBlockRepo{store: store}

	logger := &MockHandlerLogger{}
	images, err := service.NewLocalImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalImageStore: %v", err)
	}

	caps := &service.CapabilityRegistry{
		Detector:   service.NewDetectorAdapter(nil, logger),
		OCR:        service.NewOCRAdapter(nil, logger),
		Translator: service.NewTranslatorAdapter(nil, logger),
		Inpainter:  service.NewInpaintAdapter(nil, logger),
	}
	fonts := service.NewFontLibrary(t.TempDir(), logger)
	typesetter := service.NewTypesetter(fonts, logger)

	container := &config.Container{
		Config:          config.NewConfig(),
		Logger:          logger,
		ProjectService:  service.NewProjectService(projects, pages, blocks, images, logger),
		PipelineService: service.NewPipelineService(projects, pages, blocks, images, caps, logger),
		ExportService:   service.NewExportService(projects, blocks, images, caps, typesetter, logger),
	}
	return NewRouter(container), store
}
