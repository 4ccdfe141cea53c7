// Package inpaint provides the text-erasure backends: a remote
// LaMa-compatible inpainting service and a pure-Go edge-fill fallback.
package inpaint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"manga-translator/internal/domain"
)

// RemoteInpainter posts the page and mask to an IOPaint-style HTTP service
// and decodes the cleaned image it returns.
type RemoteInpainter struct {
	baseURL string
	client  *http.Client
	logger  domain.Logger
}

// NewRemoteInpainter creates the backend against baseURL.
func NewRemoteInpainter(baseURL string, logger domain.Logger) *RemoteInpainter {
	return &RemoteInpainter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

func (r *RemoteInpainter) Name() string { return "lama-remote" }

type inpaintRequest struct {
	Image string `json:"image"`
	Mask  string `json:"mask"`
}

// Inpaint sends image and mask as base64 PNG payloads.
func (r *RemoteInpainter) Inpaint(ctx context.Context, img image.Image, mask *image.Gray) (image.Image, error) {
	imgB64, err := encodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	maskB64, err := encodePNGBase64(mask)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(inpaintRequest{Image: imgB64, Mask: maskB64})
	if err != nil {
		return nil, fmt.Errorf("marshal inpaint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/inpaint", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inpaint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inpaint service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inpaint service returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read inpaint response: %w", err)
	}
	cleaned, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cleaned image: %w", err)
	}
	return cleaned, nil
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
