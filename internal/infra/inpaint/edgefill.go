package inpaint

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"manga-translator/internal/domain"
)

// EdgeFillInpainter is the dependency-free fallback eraser. Each masked
// pixel is replaced by the average of the nearest unmasked pixels found
// scanning left, right, up and down from it. The result is not
// photorealistic, but since masks cover speech bubbles the surrounding
// pixels are usually flat bubble fill and the seam is invisible.
type EdgeFillInpainter struct {
	logger domain.Logger
}

// NewEdgeFillInpainter creates the fallback backend.
func NewEdgeFillInpainter(logger domain.Logger) *EdgeFillInpainter {
	return &EdgeFillInpainter{logger: logger}
}

func (e *EdgeFillInpainter) Name() string { return "edge-fill" }

// Inpaint never fails; with a degenerate mask the input comes back
// unchanged.
func (e *EdgeFillInpainter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	w, h := bounds.Dx(), bounds.Dy()
	masked := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return true
		}
		return mask.GrayAt(mask.Bounds().Min.X+x, mask.Bounds().Min.Y+y).Y > 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !masked(x, y) {
				continue
			}

			var rs, gs, bs, n uint32
			add := func(px, py int) {
				c := out.RGBAAt(px, py)
				rs += uint32(c.R)
				gs += uint32(c.G)
				bs += uint32(c.B)
				n++
			}
			// Nearest clean pixel in each cardinal direction.
			for lx := x - 1; lx >= 0; lx-- {
				if !masked(lx, y) {
					add(lx, y)
					break
				}
			}
			for rx := x + 1; rx < w; rx++ {
				if !masked(rx, y) {
					add(rx, y)
					break
				}
			}
			for uy := y - 1; uy >= 0; uy-- {
				if !masked(x, uy) {
					add(x, uy)
					break
				}
			}
			for dy := y + 1; dy < h; dy++ {
				if !masked(x, dy) {
					add(x, dy)
					break
				}
			}

			if n == 0 {
				// Fully masked image: fall back to white, the most common
				// bubble interior.
				out.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
				continue
			}
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(rs / n),
				G: uint8(gs / n),
				B: uint8(bs / n),
				A: 255,
			})
		}
	}
	return out, nil
}
