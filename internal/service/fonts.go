package service

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"manga-translator/internal/domain"
)

// systemFontCandidates are tried, in order, when a requested family cannot
// be resolved inside the fonts directory. CJK-capable fonts come first
// because most source material is Japanese/Korean/Chinese.
var systemFontCandidates = []string{
	"/usr/share/fonts/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"C:/Windows/Fonts/arial.ttf",
	"C:/Windows/Fonts/msgothic.ttc",
}

// FontLibrary resolves font families to parsed TrueType fonts and measures
// text through a shared drawing context. Parsed fonts are cached for the
// process lifetime. Safe for concurrent use.
type FontLibrary struct {
	dir    string
	logger domain.Logger

	mu      sync.Mutex
	fonts   map[string]*truetype.Font
	measure *gg.Context // 1x1 measuring context, guarded by mu
}

// NewFontLibrary creates a font library rooted at dir.
func NewFontLibrary(dir string, logger domain.Logger) *FontLibrary {
	return &FontLibrary{
		dir:     dir,
		logger:  logger,
		fonts:   make(map[string]*truetype.Font),
		measure: gg.NewContext(1, 1),
	}
}

// Face returns a font.Face for the family at the given size. When no
// TrueType font can be resolved at all, a built-in bitmap face is returned
// so rendering still produces legible output.
func (l *FontLibrary) Face(family string, size float64) font.Face {
	f := l.resolve(family)
	if f == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// LineWidth implements TextMeasurer: the rendered width of one line of text
// in the given family and size.
func (l *FontLibrary) LineWidth(text, family string, size int) float64 {
	face := l.Face(family, float64(size))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.measure.SetFontFace(face)
	w, _ := l.measure.MeasureString(text)
	return w
}

// resolve finds and caches the TrueType font for a family. Resolution
// order: <fontsDir>/<family>.ttf (case-insensitive, ttf/otf), any font file
// in the fonts dir, then the system candidates.
func (l *FontLibrary) resolve(family string) *truetype.Font {
	l.mu.Lock()
	if f, ok := l.fonts[family]; ok {
		l.mu.Unlock()
		return f
	}
	l.mu.Unlock()

	f := l.load(family)

	l.mu.Lock()
	l.fonts[family] = f // nil is cached too, to avoid rescanning
	l.mu.Unlock()

	if f == nil {
		l.logger.Warn("No TrueType font found, using built-in bitmap font", "family", family)
	}
	return f
}

func (l *FontLibrary) load(family string) *truetype.Font {
	var candidates []string
	if family != "" {
		base := strings.ToLower(family)
		candidates = append(candidates,
			filepath.Join(l.dir, family+".ttf"),
			filepath.Join(l.dir, family+".otf"),
			filepath.Join(l.dir, base+".ttf"),
			filepath.Join(l.dir, base+".otf"),
		)
	}

	// Any font shipped in the fonts dir beats system lookup.
	if entries, err := os.ReadDir(l.dir); err == nil {
		for _, entry := range entries {
			name := strings.ToLower(entry.Name())
			if strings.HasSuffix(name, ".ttf") || strings.HasSuffix(name, ".otf") {
				candidates = append(candidates, filepath.Join(l.dir, entry.Name()))
			}
		}
	}
	candidates = append(candidates, systemFontCandidates...)

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			l.logger.Debug("Failed to parse font file", "path", path, "error", err)
			continue
		}
		return f
	}
	return nil
}
