package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"manga-translator/internal/domain"
	"manga-translator/internal/infra/supabase"
)

// SupabaseProjectRepository implements domain.ProjectRepository on the
// "projects" table.
type SupabaseProjectRepository struct {
	supabaseClient *supabase.Client
	logger         domain.Logger
}

// NewSupabaseProjectRepository creates a new Supabase project repository
func NewSupabaseProjectRepository(supabaseClient *supabase.Client, logger domain.Logger) domain.ProjectRepository {
	return &SupabaseProjectRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Create inserts a new project row.
func (r *SupabaseProjectRepository) Create(project *domain.Project) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"id":              project.ID,
		"name":            project.Name,
		"source_language": project.SourceLanguage,
		"target_language": project.TargetLanguage,
		"status":          project.Status,
		"created_at":      project.CreatedAt.Format(time.RFC3339),
		"updated_at":      project.UpdatedAt.Format(time.RFC3339),
	}

	_, _, err := client.From("projects").Insert(data, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID fetches a single project without its pages.
func (r *SupabaseProjectRepository) GetByID(id string) (*domain.Project, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("projects").
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return mapToProject(rows[0]), nil
}

// GetWithPages fetches a project with its pages ordered by page_number.
func (r *SupabaseProjectRepository) GetWithPages(id string) (*domain.Project, error) {
	project, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	client := r.supabaseClient.DB()
	data, _, err := client.From("pages").
		Select("*", "", false).
		Eq("project_id", id).
		Order("page_number", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get project pages: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	project.Pages = make([]*domain.Page, 0, len(rows))
	for _, row := range rows {
		project.Pages = append(project.Pages, mapToPage(row))
	}
	return project, nil
}

// List returns all projects, newest first, with their page counts.
func (r *SupabaseProjectRepository) List() ([]*domain.ProjectListItem, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("projects").
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	pageCounts, err := r.pageCounts()
	if err != nil {
		return nil, err
	}

	items := make([]*domain.ProjectListItem, 0, len(rows))
	for _, row := range rows {
		project := mapToProject(row)
		items = append(items, &domain.ProjectListItem{
			ID:             project.ID,
			Name:           project.Name,
			SourceLanguage: project.SourceLanguage,
			TargetLanguage: project.TargetLanguage,
			Status:         project.Status,
			PageCount:      pageCounts[project.ID],
			CreatedAt:      project.CreatedAt,
		})
	}
	return items, nil
}

// UpdateStatus sets the project status and bumps updated_at.
func (r *SupabaseProjectRepository) UpdateStatus(id string, status string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	_, _, err := client.From("projects").Update(data, "", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return nil
}

// Delete removes a project and its dependent rows.
func (r *SupabaseProjectRepository) Delete(id string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	// Children first: text blocks per page, then pages, then the project.
	pagesData, _, err := client.From("pages").
		Select("id", "", false).
		Eq("project_id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to load project pages for delete: %w", err)
	}
	var pageRows []map[string]interface{}
	if err := json.Unmarshal(pagesData, &pageRows); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, row := range pageRows {
		pageID := getString(row, "id")
		_, _, err := client.From("text_blocks").Delete("", "").Eq("page_id", pageID).Execute()
		if err != nil {
			return fmt.Errorf("failed to delete text blocks: %w", err)
		}
	}

	_, _, err = client.From("pages").Delete("", "").Eq("project_id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	_, _, err = client.From("projects").Delete("", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// pageCounts returns the number of pages per project id.
func (r *SupabaseProjectRepository) pageCounts() (map[string]int, error) {
	client := r.supabaseClient.DB()

	data, _, err := client.From("pages").
		Select("project_id", "", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	counts := make(map[string]int)
	for _, row := range rows {
		counts[getString(row, "project_id")]++
	}
	return counts, nil
}

func mapToProject(row map[string]interface{}) *domain.Project {
	return &domain.Project{
		ID:             getString(row, "id"),
		Name:           getString(row, "name"),
		SourceLanguage: getString(row, "source_language"),
		TargetLanguage: getString(row, "target_language"),
		Status:         getString(row, "status"),
		CreatedAt:      getTime(row, "created_at"),
		UpdatedAt:      getTime(row, "updated_at"),
	}
}

func mapToPage(row map[string]interface{}) *domain.Page {
	return &domain.Page{
		ID:         getString(row, "id"),
		ProjectID:  getString(row, "project_id"),
		Filename:   getString(row, "filename"),
		PageNumber: getInt(row, "page_number"),
		ImagePath:  getString(row, "image_path"),
		Status:     getString(row, "status"),
	}
}
