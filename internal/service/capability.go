package service

import (
	"context"
	"image"
	"image/draw"
	"strings"
	"sync"

	"manga-translator/internal/domain"
	"manga-translator/internal/infra/detector"
	"manga-translator/internal/infra/inpaint"
	"manga-translator/internal/infra/ocr"
	"manga-translator/internal/infra/translate"
)

// batchThreshold: batches of this size or smaller skip the combined request
// and translate text-by-text for higher fidelity.
const batchThreshold = 2

// CapabilityRegistry owns the process-wide capability providers. Backends
// are heavyweight (model sessions, native clients), so the registry is
// built once at startup from configuration and reused for the process
// lifetime; Close releases backend resources.
//
// Providers are safe to call sequentially from a single caller. They are
// not guaranteed thread-safe under concurrent invocation: callers sharing a
// registry across goroutines must serialize access per provider. The
// pipeline honors this by processing each project as a single sequential
// run.
type CapabilityRegistry struct {
	Detector   domain.Detector
	OCR        domain.OCR
	Translator domain.Translator
	Inpainter  domain.Inpainter

	mu      sync.Mutex
	closers []func()
}

// Acquire takes the registry's serialization lock. Concurrent runs over
// distinct projects share the singleton backends, so every provider call
// must happen between Acquire and Release.
func (r *CapabilityRegistry) Acquire() { r.mu.Lock() }

// Release drops the serialization lock.
func (r *CapabilityRegistry) Release() { r.mu.Unlock() }

// NewCapabilityRegistry assembles the fallback chains. Which backends
// participate is a pure function of the configuration, so tests can build
// registries around fakes through the adapter constructors directly.
func NewCapabilityRegistry(cfg domain.Config, logger domain.Logger) *CapabilityRegistry {
	reg := &CapabilityRegistry{}
	provider := cfg.GetProviderConfig()

	var detectorBackends []domain.DetectorBackend
	if cfg.GetDetectorModelPath() != "" {
		onnx := detector.NewONNXDetector(cfg.GetDetectorModelPath(), logger)
		detectorBackends = append(detectorBackends, onnx)
		reg.closers = append(reg.closers, onnx.Close)
	}
	detectorBackends = append(detectorBackends, detector.NewThresholdDetector(logger))
	reg.Detector = NewDetectorAdapter(detectorBackends, logger)

	ocrBackends := []domain.OCRBackend{ocr.NewTesseractOCR(cfg.GetOCRLanguages(), logger)}
	if provider.APIKey != "" {
		ocrBackends = append(ocrBackends, ocr.NewVisionOCR(provider, logger))
	}
	reg.OCR = NewOCRAdapter(ocrBackends, logger)

	var translatorBackends []domain.TranslatorBackend
	if provider.APIKey != "" {
		translatorBackends = append(translatorBackends, translate.NewOpenAITranslator(provider, logger))
	}
	translatorBackends = append(translatorBackends, translate.NewPlaceholder())
	reg.Translator = NewTranslatorAdapter(translatorBackends, logger)

	var inpaintBackends []domain.InpaintBackend
	if cfg.GetInpaintServiceURL() != "" {
		inpaintBackends = append(inpaintBackends, inpaint.NewRemoteInpainter(cfg.GetInpaintServiceURL(), logger))
	}
	inpaintBackends = append(inpaintBackends, inpaint.NewEdgeFillInpainter(logger))
	reg.Inpainter = NewInpaintAdapter(inpaintBackends, logger)

	return reg
}

// Close releases backend resources (model sessions).
func (r *CapabilityRegistry) Close() {
	for _, close := range r.closers {
		close()
	}
}

// DetectorAdapter walks an ordered backend chain and recovers every failure
// as "zero regions found".
type DetectorAdapter struct {
	backends []domain.DetectorBackend
	logger   domain.Logger
}

// NewDetectorAdapter wraps backends in falling-through order.
func NewDetectorAdapter(backends []domain.DetectorBackend, logger domain.Logger) *DetectorAdapter {
	return &DetectorAdapter{backends: backends, logger: logger}
}

// Detect returns the first backend's successful result. A backend error
// falls through to the next; when all fail the page simply has no regions.
func (a *DetectorAdapter) Detect(ctx context.Context, img image.Image) []domain.BoundingBox {
	for _, backend := range a.backends {
		regions, err := backend.Detect(ctx, img)
		if err != nil {
			a.logger.Warn("Detection backend failed, falling through", "backend", backend.Name(), "error", err)
			continue
		}
		return regions
	}
	return nil
}

// OCRAdapter walks an ordered backend chain over a cropped region and
// recovers every failure as empty text.
type OCRAdapter struct {
	backends []domain.OCRBackend
	logger   domain.Logger
}

// NewOCRAdapter wraps backends in falling-through order.
func NewOCRAdapter(backends []domain.OCRBackend, logger domain.Logger) *OCRAdapter {
	return &OCRAdapter{backends: backends, logger: logger}
}

// ExtractText crops the region out of the page image and asks each backend
// in turn. All-fail yields "", which the pipeline treats as "no text here".
func (a *OCRAdapter) ExtractText(ctx context.Context, img image.Image, region domain.BoundingBox, sourceLang string) string {
	crop := cropRegion(img, region)
	if crop == nil {
		return ""
	}
	for _, backend := range a.backends {
		text, err := backend.ExtractText(ctx, crop, sourceLang)
		if err != nil {
			a.logger.Warn("OCR backend failed, falling through", "backend", backend.Name(), "error", err)
			continue
		}
		return strings.TrimSpace(text)
	}
	return ""
}

// TranslatorAdapter walks an ordered backend chain; the chain always ends
// in the placeholder, so the result can never be shorter than the input
// and translation can never stall the pipeline.
type TranslatorAdapter struct {
	backends []domain.TranslatorBackend
	logger   domain.Logger
}

// NewTranslatorAdapter wraps backends in falling-through order.
func NewTranslatorAdapter(backends []domain.TranslatorBackend, logger domain.Logger) *TranslatorAdapter {
	return &TranslatorAdapter{backends: backends, logger: logger}
}

// TranslateBatch translates texts preserving length and order. Small
// batches go text-by-text for fidelity; larger ones use each backend's
// combined indexed request. Total failure degrades to sentinels.
func (a *TranslatorAdapter) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) []string {
	if len(texts) == 0 {
		return nil
	}

	if len(texts) <= batchThreshold {
		out := make([]string, len(texts))
		for i, text := range texts {
			out[i] = a.translateOne(ctx, text, sourceLang, targetLang)
		}
		return out
	}

	for _, backend := range a.backends {
		results, err := backend.TranslateBatch(ctx, texts, sourceLang, targetLang)
		if err != nil || len(results) != len(texts) {
			a.logger.Warn("Translation backend failed, falling through", "backend", backend.Name(), "error", err)
			continue
		}
		return results
	}

	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = translate.Sentinel(text)
	}
	return out
}

func (a *TranslatorAdapter) translateOne(ctx context.Context, text, sourceLang, targetLang string) string {
	for _, backend := range a.backends {
		result, err := backend.Translate(ctx, text, sourceLang, targetLang)
		if err != nil {
			a.logger.Warn("Translation backend failed, falling through", "backend", backend.Name(), "error", err)
			continue
		}
		return result
	}
	return translate.Sentinel(text)
}

// InpaintAdapter walks an ordered backend chain; total failure returns the
// original image so export still produces output.
type InpaintAdapter struct {
	backends []domain.InpaintBackend
	logger   domain.Logger
}

// NewInpaintAdapter wraps backends in falling-through order.
func NewInpaintAdapter(backends []domain.InpaintBackend, logger domain.Logger) *InpaintAdapter {
	return &InpaintAdapter{backends: backends, logger: logger}
}

// Inpaint erases the masked pixels via the first healthy backend.
func (a *InpaintAdapter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) image.Image {
	for _, backend := range a.backends {
		cleaned, err := backend.Inpaint(ctx, img, mask)
		if err != nil {
			a.logger.Warn("Inpaint backend failed, falling through", "backend", backend.Name(), "error", err)
			continue
		}
		return cleaned
	}
	return img
}

// cropRegion copies the part of img under region, clamped to the image
// bounds. Returns nil when the clamped region is empty.
func cropRegion(img image.Image, region domain.BoundingBox) image.Image {
	rect := region.Rect().Add(img.Bounds().Min).Intersect(img.Bounds())
	if rect.Empty() {
		return nil
	}
	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), img, rect.Min, draw.Src)
	return crop
}
