package service

import (
	"strings"

	"manga-translator/internal/domain"
)

// Layout constants. Sizes are in pixels.
const (
	DefaultMinFontSize = 10
	DefaultMaxFontSize = 48

	layoutLineSpacing     = 4.0
	layoutHorizontalInset = 4.0
	layoutVerticalInset   = 4.0
	layoutBackgroundInset = 2.0
)

// widthSample is a short representative string measured once per font size
// to estimate the average glyph width before wrapping.
const widthSample = "あいうえ"

// TextMeasurer reports the rendered width of a single line of text.
type TextMeasurer interface {
	LineWidth(text, family string, size int) float64
}

// LayoutLine is one wrapped line with its draw position. X and Y address
// the top-left corner of the line's bounding area.
type LayoutLine struct {
	Text string
	X    float64
	Y    float64
}

// TextLayout is the complete typesetting result for one block: the chosen
// font size, the positioned lines, and the opaque background rectangle
// drawn beneath them for legibility over inpainted content.
type TextLayout struct {
	FontSize   int
	Lines      []LayoutLine
	Background domain.BoundingBox
}

// LayoutEngine fits a translated string into a bounding box: it finds the
// largest font size whose word-wrapped rendering fits, and computes line
// positions for the requested alignment. Pure with respect to its measurer:
// fixed (text, box, font, alignment) inputs always yield identical output.
type LayoutEngine struct {
	measurer TextMeasurer

	MinFontSize int
	MaxFontSize int
}

// NewLayoutEngine creates a layout engine on top of a text measurer.
func NewLayoutEngine(measurer TextMeasurer) *LayoutEngine {
	return &LayoutEngine{
		measurer:    measurer,
		MinFontSize: DefaultMinFontSize,
		MaxFontSize: DefaultMaxFontSize,
	}
}

// Layout typesets text into box. The requested size from the block is tried
// first; when its wrap overflows vertically the engine descends from
// MaxFontSize toward MinFontSize and keeps the first size that fits. When
// nothing fits even at the minimum, the minimum-size wrap is returned and
// may overflow visually.
func (e *LayoutEngine) Layout(text string, box domain.BoundingBox, family string, requestedSize int, alignment string) TextLayout {
	layout := TextLayout{
		Background: domain.BoundingBox{
			X: box.X + layoutBackgroundInset,
			Y: box.Y + layoutBackgroundInset,
			W: maxFloat(0, box.W-2*layoutBackgroundInset),
			H: maxFloat(0, box.H-2*layoutBackgroundInset),
		},
	}
	if strings.TrimSpace(text) == "" {
		layout.FontSize = requestedSize
		return layout
	}

	size, lines := e.fit(text, box, family, requestedSize)
	layout.FontSize = size
	layout.Lines = e.position(lines, box, family, size, alignment)
	return layout
}

// fit picks the font size and wrap.
func (e *LayoutEngine) fit(text string, box domain.BoundingBox, family string, requestedSize int) (int, []string) {
	innerH := box.H - 2*layoutVerticalInset

	if requestedSize > 0 {
		lines := e.wrap(text, box, family, requestedSize)
		if e.wrappedHeight(requestedSize, len(lines)) <= innerH {
			return requestedSize, lines
		}
	}

	minSize := e.MinFontSize
	if minSize < 1 {
		minSize = 1
	}
	var lastLines []string
	lastSize := minSize
	for size := e.MaxFontSize; size >= minSize; size-- {
		lines := e.wrap(text, box, family, size)
		if e.wrappedHeight(size, len(lines)) <= innerH {
			return size, lines
		}
		lastLines = lines
		lastSize = size
	}
	// Best effort: nothing fits, return the smallest wrap attempted.
	return lastSize, lastLines
}

func (e *LayoutEngine) wrappedHeight(size, lineCount int) float64 {
	return (float64(size) + layoutLineSpacing) * float64(lineCount)
}

// wrap breaks text into lines whose measured width fits the box's inner
// width. It starts from a chars-per-line estimate derived from the average
// glyph width of a sample string and narrows the budget until every line
// fits; the one-character-per-line wrap is the guaranteed floor.
func (e *LayoutEngine) wrap(text string, box domain.BoundingBox, family string, size int) []string {
	innerW := box.W - 2*layoutHorizontalInset
	if innerW < 1 {
		innerW = 1
	}

	sampleRunes := float64(len([]rune(widthSample)))
	avgCharW := e.measurer.LineWidth(widthSample, family, size) / sampleRunes
	if avgCharW < 1 {
		avgCharW = 1
	}
	charsPerLine := int(innerW / avgCharW)
	if charsPerLine < 1 {
		charsPerLine = 1
	}

	for budget := charsPerLine; budget >= 1; budget-- {
		lines := wrapRunes(text, budget)
		if len(lines) == 0 {
			break
		}
		fits := true
		for _, line := range lines {
			if e.measurer.LineWidth(line, family, size) > innerW {
				fits = false
				break
			}
		}
		if fits {
			return lines
		}
	}

	lines := wrapRunes(text, 1)
	if len(lines) == 0 {
		lines = []string{text}
	}
	return lines
}

// position computes per-line draw coordinates. Lines are horizontally
// placed per alignment and the whole block is vertically centered.
func (e *LayoutEngine) position(lines []string, box domain.BoundingBox, family string, size int, alignment string) []LayoutLine {
	lineHeight := float64(size) + layoutLineSpacing
	totalHeight := lineHeight * float64(len(lines))
	yStart := box.Y + maxFloat(0, (box.H-totalHeight)/2)

	positioned := make([]LayoutLine, 0, len(lines))
	for i, line := range lines {
		width := e.measurer.LineWidth(line, family, size)

		var x float64
		switch alignment {
		case domain.AlignRight:
			x = box.X + box.W - width - layoutHorizontalInset
		case domain.AlignLeft:
			x = box.X + layoutHorizontalInset
		default: // center
			x = box.X + (box.W-width)/2
		}

		positioned = append(positioned, LayoutLine{
			Text: line,
			X:    x,
			Y:    yStart + float64(i)*lineHeight,
		})
	}
	return positioned
}

// wrapRunes word-wraps text to at most budget runes per line. Words are
// kept whole when possible; a word longer than the budget is hard-broken.
func wrapRunes(text string, budget int) []string {
	if budget < 1 {
		budget = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, string(current))
			current = current[:0]
		}
	}

	for _, word := range words {
		runes := []rune(word)
		for len(runes) > budget {
			// Hard break: the word alone exceeds the line budget.
			flush()
			lines = append(lines, string(runes[:budget]))
			runes = runes[budget:]
		}
		switch {
		case len(current) == 0:
			current = append(current, runes...)
		case len(current)+1+len(runes) <= budget:
			current = append(current, ' ')
			current = append(current, runes...)
		default:
			flush()
			current = append(current, runes...)
		}
	}
	flush()
	return lines
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
