package service

import (
	"image"
	"image/color"

	"manga-translator/internal/domain"
)

// DefaultMaskPadding expands each erase region slightly so the inpainter
// removes anti-aliased edges of the original lettering as well.
const DefaultMaskPadding = 5

// BuildMask renders regions into a binary erase-mask of the given image
// dimensions. White (255) pixels are to be inpainted, black (0) kept. Each
// region grows by padding pixels on every side, clamped to the image bounds.
//
// Callers should test the region list before building: with no regions the
// page needs no inpainting and the source image is reused as-is.
func BuildMask(width, height int, regions []domain.BoundingBox, padding int) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	if len(regions) == 0 {
		return mask
	}

	white := color.Gray{Y: 255}
	for _, r := range regions {
		x1 := clampInt(int(r.X)-padding, 0, width)
		y1 := clampInt(int(r.Y)-padding, 0, height)
		x2 := clampInt(int(r.X+r.W)+padding, 0, width)
		y2 := clampInt(int(r.Y+r.H)+padding, 0, height)

		for y := y1; y < y2; y++ {
			for x := x1; x < x2; x++ {
				mask.SetGray(x, y, white)
			}
		}
	}
	return mask
}

// MaskIsEmpty reports whether no pixel of the mask is marked for erasing.
func MaskIsEmpty(mask *image.Gray) bool {
	for _, v := range mask.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
