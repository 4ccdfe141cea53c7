package repository

import (
	"encoding/json"
	"fmt"

	"manga-translator/internal/domain"
	"manga-translator/internal/infra/supabase"
)

// SupabaseTextBlockRepository implements domain.TextBlockRepository on the
// "text_blocks" table.
type SupabaseTextBlockRepository struct {
	supabaseClient *supabase.Client
	logger         domain.Logger
}

// NewSupabaseTextBlockRepository creates a new Supabase text block repository
func NewSupabaseTextBlockRepository(supabaseClient *supabase.Client, logger domain.Logger) domain.TextBlockRepository {
	return &SupabaseTextBlockRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// CreateBatch inserts all blocks in one request.
func (r *SupabaseTextBlockRepository) CreateBatch(blocks []*domain.TextBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	rows := make([]map[string]interface{}, len(blocks))
	for i, block := range blocks {
		rows[i] = blockToRow(block)
	}

	_, _, err := client.From("text_blocks").Insert(rows, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create text blocks: %w", err)
	}
	return nil
}

// GetByID fetches a single block.
func (r *SupabaseTextBlockRepository) GetByID(id string) (*domain.TextBlock, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("text_blocks").
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get text block: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrTextBlockNotFound
	}
	return mapToTextBlock(rows[0]), nil
}

// GetByPage returns every block of one page.
func (r *SupabaseTextBlockRepository) GetByPage(pageID string) ([]*domain.TextBlock, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("text_blocks").
		Select("*", "", false).
		Eq("page_id", pageID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get text blocks: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	blocks := make([]*domain.TextBlock, 0, len(rows))
	for _, row := range rows {
		blocks = append(blocks, mapToTextBlock(row))
	}
	return blocks, nil
}

// Update writes all mutable fields of a block back.
func (r *SupabaseTextBlockRepository) Update(block *domain.TextBlock) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := blockToRow(block)
	delete(data, "id")
	delete(data, "page_id")

	_, _, err := client.From("text_blocks").Update(data, "", "").Eq("id", block.ID).Execute()
	if err != nil {
		return fmt.Errorf("failed to update text block: %w", err)
	}
	return nil
}

// DeleteUneditedByPage removes the machine-generated blocks of a page,
// keeping anything a user has touched.
func (r *SupabaseTextBlockRepository) DeleteUneditedByPage(pageID string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From("text_blocks").
		Delete("", "").
		Eq("page_id", pageID).
		Eq("is_edited", "false").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete text blocks: %w", err)
	}
	return nil
}

func blockToRow(block *domain.TextBlock) map[string]interface{} {
	return map[string]interface{}{
		"id":              block.ID,
		"page_id":         block.PageID,
		"box_x":           block.Box.X,
		"box_y":           block.Box.Y,
		"box_width":       block.Box.W,
		"box_height":      block.Box.H,
		"text_original":   block.TextOriginal,
		"text_translated": block.TextTranslated,
		"font_size":       block.FontSize,
		"font_family":     block.FontFamily,
		"text_color":      block.TextColor,
		"text_alignment":  block.TextAlignment,
		"is_edited":       block.IsEdited,
	}
}

func mapToTextBlock(row map[string]interface{}) *domain.TextBlock {
	return &domain.TextBlock{
		ID:     getString(row, "id"),
		PageID: getString(row, "page_id"),
		Box: domain.BoundingBox{
			X: getFloat(row, "box_x"),
			Y: getFloat(row, "box_y"),
			W: getFloat(row, "box_width"),
			H: getFloat(row, "box_height"),
		},
		TextOriginal:   getStringPtr(row, "text_original"),
		TextTranslated: getStringPtr(row, "text_translated"),
		FontSize:       getInt(row, "font_size"),
		FontFamily:     getString(row, "font_family"),
		TextColor:      getString(row, "text_color"),
		TextAlignment:  getString(row, "text_alignment"),
		IsEdited:       getBool(row, "is_edited"),
	}
}
