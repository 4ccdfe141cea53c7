package service

import (
	"sort"

	"manga-translator/internal/domain"
)

const (
	// DefaultIOUThreshold is the overlap above which two detected regions
	// are considered duplicates of the same text area.
	DefaultIOUThreshold = 0.5
	// DefaultColumnWidth is the horizontal band, in pixels, used to bucket
	// regions into coarse columns for reading-order sorting.
	DefaultColumnWidth = 100.0
)

// RegionMerger deduplicates overlapping detected regions and sorts the
// survivors into an approximate manga reading order (right-to-left columns,
// top-to-bottom within a column). Output is deterministic for identical
// input coordinates.
type RegionMerger struct {
	IOUThreshold float64
	ColumnWidth  float64
}

// NewRegionMerger creates a merger with the default thresholds.
func NewRegionMerger() *RegionMerger {
	return &RegionMerger{
		IOUThreshold: DefaultIOUThreshold,
		ColumnWidth:  DefaultColumnWidth,
	}
}

// Merge dedups and orders detector output. Empty input yields empty output;
// Merge never fails.
func (m *RegionMerger) Merge(regions []domain.BoundingBox) []domain.BoundingBox {
	if len(regions) == 0 {
		return nil
	}

	// Largest area first so the bigger box always wins an overlapping pair.
	// Ties break on coordinates to keep the result stable.
	candidates := make([]domain.BoundingBox, len(regions))
	copy(candidates, regions)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Area() != b.Area() {
			return a.Area() > b.Area()
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	kept := make([]domain.BoundingBox, 0, len(candidates))
	for _, c := range candidates {
		duplicate := false
		for _, k := range kept {
			if c.IOU(k) > m.IOUThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}

	m.sortReadingOrder(kept)
	return kept
}

// sortReadingOrder orders regions right-to-left by coarse column, then
// top-to-bottom within a column.
func (m *RegionMerger) sortReadingOrder(regions []domain.BoundingBox) {
	col := func(b domain.BoundingBox) int {
		return int(b.X / m.ColumnWidth)
	}
	sort.SliceStable(regions, func(i, j int) bool {
		ci, cj := col(regions[i]), col(regions[j])
		if ci != cj {
			return ci > cj
		}
		return regions[i].Y < regions[j].Y
	})
}
