package domain

import (
	"errors"
	"testing"
)

func strPtr(s string) *string    { return &s }
func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestTextBlockUpdate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		update  TextBlockUpdate
		wantErr error
	}{
		{
			name:   "Empty update is valid",
			update: TextBlockUpdate{},
		},
		{
			name: "Valid full update",
			update: TextBlockUpdate{
				TextTranslated: strPtr("hello"),
				FontSize:       intPtr(24),
				TextColor:      strPtr("#FF00aa"),
				TextAlignment:  strPtr(AlignRight),
				BoxWidth:       floatPtr(120),
				BoxHeight:      floatPtr(40),
			},
		},
		{
			name:    "Zero font size",
			update:  TextBlockUpdate{FontSize: intPtr(0)},
			wantErr: ErrInvalidFontSize,
		},
		{
			name:    "Negative width",
			update:  TextBlockUpdate{BoxWidth: floatPtr(-1)},
			wantErr: ErrInvalidBox,
		},
		{
			name:    "Color without hash",
			update:  TextBlockUpdate{TextColor: strPtr("FF00AA")},
			wantErr: ErrInvalidColor,
		},
		{
			name:    "Color too short",
			update:  TextBlockUpdate{TextColor: strPtr("#FFF")},
			wantErr: ErrInvalidColor,
		},
		{
			name:    "Unknown alignment",
			update:  TextBlockUpdate{TextAlignment: strPtr("justified")},
			wantErr: ErrInvalidAlignment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTextBlockUpdate_Apply(t *testing.T) {
	block := &TextBlock{
		ID:            "b1",
		Box:           BoundingBox{X: 10, Y: 20, W: 100, H: 50},
		TextOriginal:  strPtr("こんにちは"),
		FontSize:      DefaultFontSize,
		FontFamily:    DefaultFontFamily,
		TextColor:     DefaultTextColor,
		TextAlignment: DefaultTextAlignment,
	}

	update := TextBlockUpdate{
		TextTranslated: strPtr("hello"),
		BoxX:           floatPtr(15),
		FontSize:       intPtr(22),
	}
	update.Apply(block)

	if block.TextTranslated == nil || *block.TextTranslated != "hello" {
		t.Errorf("TextTranslated not applied: %v", block.TextTranslated)
	}
	if block.Box.X != 15 || block.Box.Y != 20 {
		t.Errorf("Box = %+v, want X updated and Y untouched", block.Box)
	}
	if block.FontSize != 22 {
		t.Errorf("FontSize = %d, want 22", block.FontSize)
	}
	if *block.TextOriginal != "こんにちは" {
		t.Errorf("TextOriginal should be untouched")
	}
	if !block.IsEdited {
		t.Error("Apply must mark the block edited")
	}
}

func TestTextBlockUpdate_ApplyAlwaysMarksEdited(t *testing.T) {
	block := &TextBlock{ID: "b1"}

	// An empty update still counts as a user touch.
	(&TextBlockUpdate{}).Apply(block)

	if !block.IsEdited {
		t.Error("empty update should still mark the block edited")
	}
}
