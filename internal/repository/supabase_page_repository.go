package repository

import (
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"manga-translator/internal/domain"
	"manga-translator/internal/infra/supabase"
)

// SupabasePageRepository implements domain.PageRepository on the "pages"
// table.
type SupabasePageRepository struct {
	supabaseClient *supabase.Client
	logger         domain.Logger
}

// NewSupabasePageRepository creates a new Supabase page repository
func NewSupabasePageRepository(supabaseClient *supabase.Client, logger domain.Logger) domain.PageRepository {
	return &SupabasePageRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// CreateBatch inserts all pages in one request.
func (r *SupabasePageRepository) CreateBatch(pages []*domain.Page) error {
	if len(pages) == 0 {
		return nil
	}
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	rows := make([]map[string]interface{}, len(pages))
	for i, page := range pages {
		rows[i] = map[string]interface{}{
			"id":          page.ID,
			"project_id":  page.ProjectID,
			"filename":    page.Filename,
			"page_number": page.PageNumber,
			"image_path":  page.ImagePath,
			"status":      page.Status,
		}
	}

	_, _, err := client.From("pages").Insert(rows, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create pages: %w", err)
	}
	return nil
}

// GetByProject returns a project's pages ordered by page_number.
func (r *SupabasePageRepository) GetByProject(projectID string) ([]*domain.Page, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("pages").
		Select("*", "", false).
		Eq("project_id", projectID).
		Order("page_number", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	pages := make([]*domain.Page, 0, len(rows))
	for _, row := range rows {
		pages = append(pages, mapToPage(row))
	}
	return pages, nil
}

// UpdateStatus sets one page's status.
func (r *SupabasePageRepository) UpdateStatus(id string, status string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{"status": status}
	_, _, err := client.From("pages").Update(data, "", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to update page status: %w", err)
	}
	return nil
}
