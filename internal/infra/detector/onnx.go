// Package detector provides the text-detection backends: an ONNX model
// session for comic-text detection and a pure-Go threshold fallback.
package detector

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	xdraw "golang.org/x/image/draw"

	"manga-translator/internal/domain"
)

const (
	onnxInputSize = 1024
	// Boxes below this score or smaller than this edge length are noise.
	onnxScoreThreshold = 0.4
	onnxMinBoxEdge     = 10.0
)

// ONNXDetector runs a comic-text-detector model exported to ONNX. The model
// takes a 1x3x1024x1024 normalized RGB tensor and emits detected boxes as an
// Nx5 tensor of (x1, y1, x2, y2, score) in input coordinates. The session is
// created once and reused; calls must be serialized by the caller.
type ONNXDetector struct {
	modelPath string
	logger    domain.Logger

	initOnce sync.Once
	initErr  error
	session  *ort.DynamicAdvancedSession
}

// NewONNXDetector creates the backend. The model file is not touched until
// the first Detect call.
func NewONNXDetector(modelPath string, logger domain.Logger) *ONNXDetector {
	return &ONNXDetector{modelPath: modelPath, logger: logger}
}

func (d *ONNXDetector) Name() string { return "onnx-text-detector" }

// Detect runs the model on a page image and maps the surviving boxes back
// to source pixel coordinates.
func (d *ONNXDetector) Detect(ctx context.Context, img image.Image) ([]domain.BoundingBox, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, nil
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3, onnxInputSize, onnxInputSize), preprocess(img))
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := d.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run detector session: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected detector output type %T", outputs[0])
	}
	defer out.Destroy()

	scaleX := float64(srcW) / onnxInputSize
	scaleY := float64(srcH) / onnxInputSize
	boxes := decodeBoxes(out.GetData(), scaleX, scaleY)

	d.logger.Debug("ONNX detector found regions", "count", len(boxes))
	return boxes, nil
}

func (d *ONNXDetector) init() error {
	d.initOnce.Do(func() {
		if _, err := os.Stat(d.modelPath); err != nil {
			d.initErr = fmt.Errorf("detector model unavailable: %w", err)
			return
		}
		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				d.initErr = fmt.Errorf("initialize onnxruntime: %w", err)
				return
			}
		}
		session, err := ort.NewDynamicAdvancedSession(
			d.modelPath,
			[]string{"images"},
			[]string{"boxes"},
			nil,
		)
		if err != nil {
			d.initErr = fmt.Errorf("create detector session: %w", err)
			return
		}
		d.session = session
		d.logger.Info("ONNX text detection model loaded", "path", d.modelPath)
	})
	return d.initErr
}

// Close releases the model session.
func (d *ONNXDetector) Close() {
	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
}

// preprocess resizes the page to the model input size and lays it out as a
// normalized CHW float32 tensor.
func preprocess(img image.Image) []float32 {
	scaled := image.NewRGBA(image.Rect(0, 0, onnxInputSize, onnxInputSize))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	data := make([]float32, 3*onnxInputSize*onnxInputSize)
	plane := onnxInputSize * onnxInputSize
	for y := 0; y < onnxInputSize; y++ {
		for x := 0; x < onnxInputSize; x++ {
			i := scaled.PixOffset(x, y)
			px := y*onnxInputSize + x
			data[px] = float32(scaled.Pix[i]) / 255.0
			data[plane+px] = float32(scaled.Pix[i+1]) / 255.0
			data[2*plane+px] = float32(scaled.Pix[i+2]) / 255.0
		}
	}
	return data
}

// decodeBoxes converts the raw (N,5) output into pixel-space boxes,
// dropping low-confidence and degenerate detections.
func decodeBoxes(raw []float32, scaleX, scaleY float64) []domain.BoundingBox {
	var boxes []domain.BoundingBox
	for i := 0; i+5 <= len(raw); i += 5 {
		score := float64(raw[i+4])
		if score < onnxScoreThreshold {
			continue
		}
		x1 := float64(raw[i]) * scaleX
		y1 := float64(raw[i+1]) * scaleY
		x2 := float64(raw[i+2]) * scaleX
		y2 := float64(raw[i+3]) * scaleY
		w, h := x2-x1, y2-y1
		if w < onnxMinBoxEdge || h < onnxMinBoxEdge {
			continue
		}
		boxes = append(boxes, domain.BoundingBox{X: x1, Y: y1, W: w, H: h})
	}
	return boxes
}
