// Package ocr provides the text-extraction backends: Tesseract via
// gosseract and an LLM vision fallback.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"manga-translator/internal/domain"
)

// TesseractOCR extracts text from cropped regions using a local Tesseract
// installation. A fresh client is created per call, so the backend itself
// carries no mutable state.
type TesseractOCR struct {
	languages map[string]string // source language code -> tesseract packs
	logger    domain.Logger

	clientFactory func() *gosseract.Client
}

// NewTesseractOCR creates the backend. languages maps pipeline language
// codes ("ja", "ko", ...) to Tesseract language strings ("jpn+jpn_vert").
func NewTesseractOCR(languages map[string]string, logger domain.Logger) *TesseractOCR {
	return &TesseractOCR{
		languages:     languages,
		logger:        logger,
		clientFactory: gosseract.NewClient,
	}
}

func (t *TesseractOCR) Name() string { return "tesseract" }

// ExtractText runs Tesseract on an already-cropped region image.
func (t *TesseractOCR) ExtractText(ctx context.Context, crop image.Image, sourceLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if packs, ok := t.languages[sourceLang]; ok {
		if err := client.SetLanguage(strings.Split(packs, "+")...); err != nil {
			return "", fmt.Errorf("set languages %q: %w", packs, err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	// Tesseract inserts line breaks per visual line; bubbles read as one
	// continuous utterance.
	return strings.Join(strings.Fields(text), " "), nil
}
