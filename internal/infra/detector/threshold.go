package detector

import (
	"context"
	"image"

	"manga-translator/internal/domain"
)

const (
	thresholdWindow = 25 // local mean window for binarization
	thresholdBias   = 10 // pixel must be this much darker than its neighborhood
	dilationRadius  = 10 // merges nearby glyphs into one block
	minEdge         = 15.0
)

// ThresholdDetector is a dependency-free fallback that finds dark,
// text-like blobs by adaptive thresholding and connected components. Its
// precision is far below the model's; it exists so the pipeline keeps
// producing regions when the ONNX model is not installed.
type ThresholdDetector struct {
	logger domain.Logger
}

// NewThresholdDetector creates the fallback backend.
func NewThresholdDetector(logger domain.Logger) *ThresholdDetector {
	return &ThresholdDetector{logger: logger}
}

func (d *ThresholdDetector) Name() string { return "threshold-fallback" }

// Detect binarizes the page against a local mean, dilates the ink mask to
// fuse characters into blocks, and returns the bounding boxes of the
// resulting components, filtered for plausible text-block sizes.
func (d *ThresholdDetector) Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	gray := toGray(img)
	binary := adaptiveBinarize(gray, w, h)
	dilated := dilate(binary, w, h, dilationRadius)
	boxes := componentBoxes(dilated, w, h)

	d.logger.Debug("Threshold fallback detection finished", "regions", len(boxes))
	return boxes, nil
}

func toGray(img image.Image) []uint8 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Standard luma weights, 16-bit channels.
			out[y*w+x] = uint8((299*r + 587*g + 114*b) / 1000 >> 8)
		}
	}
	return out
}

// adaptiveBinarize marks pixels noticeably darker than their local mean.
// The local mean comes from a summed-area table so the window size does not
// affect cost.
func adaptiveBinarize(gray []uint8, w, h int) []uint8 {
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(gray[y*w+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := thresholdWindow / 2
	binary := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		y1, y2 := clamp(y-half, 0, h), clamp(y+half+1, 0, h)
		for x := 0; x < w; x++ {
			x1, x2 := clamp(x-half, 0, w), clamp(x+half+1, 0, w)
			count := uint64((y2 - y1) * (x2 - x1))
			sum := integral[y2*(w+1)+x2] - integral[y1*(w+1)+x2] - integral[y2*(w+1)+x1] + integral[y1*(w+1)+x1]
			mean := sum / count
			if uint64(gray[y*w+x])+thresholdBias < mean {
				binary[y*w+x] = 1
			}
		}
	}
	return binary
}

// dilate sets a pixel when any ink falls within radius of it, computed with
// a summed-area table over the binary mask.
func dilate(binary []uint8, w, h, radius int) []uint8 {
	integral := make([]uint32, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint32
		for x := 0; x < w; x++ {
			rowSum += uint32(binary[y*w+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		y1, y2 := clamp(y-radius, 0, h), clamp(y+radius+1, 0, h)
		for x := 0; x < w; x++ {
			x1, x2 := clamp(x-radius, 0, w), clamp(x+radius+1, 0, w)
			sum := integral[y2*(w+1)+x2] - integral[y1*(w+1)+x2] - integral[y2*(w+1)+x1] + integral[y1*(w+1)+x1]
			if sum > 0 {
				out[y*w+x] = 1
			}
		}
	}
	return out
}

// componentBoxes labels connected ink blobs and keeps those whose bounding
// box looks like a text block: not a speck, not half the page.
func componentBoxes(mask []uint8, w, h int) []domain.BoundingBox {
	minArea := float64(w*h) * 0.001
	maxArea := float64(w*h) * 0.5

	visited := make([]bool, w*h)
	var boxes []domain.BoundingBox
	var stack []int

	for start := range mask {
		if mask[start] == 0 || visited[start] {
			continue
		}
		minX, minY := w, h
		maxX, maxY := 0, 0

		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) || visited[n] || mask[n] == 0 {
					continue
				}
				// Row wrap guard for horizontal neighbors.
				if (n == idx-1 && x == 0) || (n == idx+1 && x == w-1) {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}

		bw := float64(maxX - minX + 1)
		bh := float64(maxY - minY + 1)
		area := bw * bh
		if area > minArea && area < maxArea && bw > minEdge && bh > minEdge {
			boxes = append(boxes, domain.BoundingBox{X: float64(minX), Y: float64(minY), W: bw, H: bh})
		}
	}
	return boxes
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
