package domain

import (
	"regexp"
	"time"
)

// Project statuses. Forward-only except the explicit reset to error.
const (
	ProjectStatusProcessing = "processing"
	ProjectStatusReady      = "ready"
	ProjectStatusExported   = "exported"
	ProjectStatusError      = "error"
)

// Page statuses, in pipeline order. A page never moves backwards within one
// run; a new run restarts it from pending.
const (
	PageStatusPending    = "pending"
	PageStatusProcessing = "processing"
	PageStatusOCRDone    = "ocr_done"
	PageStatusTranslated = "translated"
	PageStatusDone       = "done"
	PageStatusError      = "error"
)

// Text alignments accepted for a text block.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Project is a translation job: one source archive of ordered page images.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Pages []*Page `json:"pages,omitempty"`
}

// Page is one image of a project. PageNumber is unique per project and
// defines both processing and output order.
type Page struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"`
	ImagePath  string `json:"image_path"` // relative to the data dir
	Status     string `json:"status"`

	TextBlocks []*TextBlock `json:"text_blocks,omitempty"`
}

// TextBlock is one detected speech bubble / text region with its OCR result,
// translation and typesetting attributes. Created as a set per page at
// pipeline time; individual fields may later be edited by a user.
type TextBlock struct {
	ID     string `json:"id"`
	PageID string `json:"page_id"`

	Box BoundingBox `json:"box"`

	TextOriginal   *string `json:"text_original"`
	TextTranslated *string `json:"text_translated"`

	FontSize      int    `json:"font_size"`
	FontFamily    string `json:"font_family"`
	TextColor     string `json:"text_color"`
	TextAlignment string `json:"text_alignment"`

	// IsEdited is sticky: once a user edit touches the block it stays true
	// until the block is deleted and recreated.
	IsEdited bool `json:"is_edited"`
}

// Typesetting defaults applied to blocks the pipeline creates.
const (
	DefaultFontSize      = 18
	DefaultFontFamily    = "Arial"
	DefaultTextColor     = "#000000"
	DefaultTextAlignment = AlignCenter
)

// TextBlockUpdate is a field mask for a user edit. Nil fields are untouched.
type TextBlockUpdate struct {
	TextOriginal   *string  `json:"text_original"`
	TextTranslated *string  `json:"text_translated"`
	BoxX           *float64 `json:"box_x"`
	BoxY           *float64 `json:"box_y"`
	BoxWidth       *float64 `json:"box_width"`
	BoxHeight      *float64 `json:"box_height"`
	FontSize       *int     `json:"font_size"`
	FontFamily     *string  `json:"font_family"`
	TextColor      *string  `json:"text_color"`
	TextAlignment  *string  `json:"text_alignment"`
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate rejects updates that would leave the block in an invalid state.
func (u *TextBlockUpdate) Validate() error {
	if u.FontSize != nil && *u.FontSize <= 0 {
		return ErrInvalidFontSize
	}
	if u.BoxWidth != nil && *u.BoxWidth < 0 {
		return ErrInvalidBox
	}
	if u.BoxHeight != nil && *u.BoxHeight < 0 {
		return ErrInvalidBox
	}
	if u.TextColor != nil && !hexColorPattern.MatchString(*u.TextColor) {
		return ErrInvalidColor
	}
	if u.TextAlignment != nil {
		switch *u.TextAlignment {
		case AlignLeft, AlignCenter, AlignRight:
		default:
			return ErrInvalidAlignment
		}
	}
	return nil
}

// Apply copies the set fields onto the block and marks it edited.
// Any user edit sets IsEdited regardless of which fields changed.
func (u *TextBlockUpdate) Apply(b *TextBlock) {
	if u.TextOriginal != nil {
		b.TextOriginal = u.TextOriginal
	}
	if u.TextTranslated != nil {
		b.TextTranslated = u.TextTranslated
	}
	if u.BoxX != nil {
		b.Box.X = *u.BoxX
	}
	if u.BoxY != nil {
		b.Box.Y = *u.BoxY
	}
	if u.BoxWidth != nil {
		b.Box.W = *u.BoxWidth
	}
	if u.BoxHeight != nil {
		b.Box.H = *u.BoxHeight
	}
	if u.FontSize != nil {
		b.FontSize = *u.FontSize
	}
	if u.FontFamily != nil {
		b.FontFamily = *u.FontFamily
	}
	if u.TextColor != nil {
		b.TextColor = *u.TextColor
	}
	if u.TextAlignment != nil {
		b.TextAlignment = *u.TextAlignment
	}
	b.IsEdited = true
}

// PipelineStatus is the payload returned by the status endpoint.
type PipelineStatus struct {
	ProjectID     string         `json:"project_id"`
	ProjectStatus string         `json:"project_status"`
	TotalPages    int            `json:"total_pages"`
	PageStatuses  map[string]int `json:"page_statuses"`
}

// ProjectListItem is the lightweight projection used when listing projects.
type ProjectListItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	PageCount      int       `json:"page_count"`
}
