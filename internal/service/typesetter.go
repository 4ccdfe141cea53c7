package service

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"

	"manga-translator/internal/domain"
)

// Typesetter draws translated text blocks onto a cleaned page image. Layout
// decisions (size, wrap, position) come from the LayoutEngine; this type
// only rasterizes them.
type Typesetter struct {
	engine *LayoutEngine
	fonts  *FontLibrary
	logger domain.Logger
}

// NewTypesetter creates a typesetter measuring through the given fonts.
func NewTypesetter(fonts *FontLibrary, logger domain.Logger) *Typesetter {
	return &Typesetter{
		engine: NewLayoutEngine(fonts),
		fonts:  fonts,
		logger: logger,
	}
}

// Render returns a copy of img with every block's translation typeset into
// its box. Blocks without a translation are left alone.
func (t *Typesetter) Render(img image.Image, blocks []*domain.TextBlock) image.Image {
	dc := gg.NewContextForImage(img)

	for _, block := range blocks {
		if block.TextTranslated == nil || *block.TextTranslated == "" {
			continue
		}
		text := *block.TextTranslated

		layout := t.engine.Layout(text, block.Box, block.FontFamily, block.FontSize, block.TextAlignment)
		if len(layout.Lines) == 0 {
			continue
		}

		// Opaque fill under the text guarantees legibility over whatever
		// the inpainter produced.
		bg := layout.Background
		dc.SetColor(color.White)
		dc.DrawRectangle(bg.X, bg.Y, bg.W, bg.H)
		dc.Fill()

		dc.SetFontFace(t.fonts.Face(block.FontFamily, float64(layout.FontSize)))
		dc.SetColor(parseHexColor(block.TextColor))
		for _, line := range layout.Lines {
			// Line positions address the line top; the baseline sits one
			// em below it.
			dc.DrawString(line.Text, line.X, line.Y+float64(layout.FontSize))
		}

		t.logger.Debug("Rendered block",
			"x", block.Box.X, "y", block.Box.Y,
			"font_size", layout.FontSize, "lines", len(layout.Lines))
	}
	return dc.Image()
}

// parseHexColor parses a #RRGGBB string, defaulting to black.
func parseHexColor(s string) color.Color {
	if len(s) != 7 || s[0] != '#' {
		return color.Black
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
