package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"manga-translator/internal/domain"
)

const visionSystemPrompt = "You are an OCR engine for comic and manga pages. " +
	"Transcribe exactly the text visible in the image, nothing else. " +
	"Preserve the original language. If the image contains no readable text, reply with an empty message."

// VisionOCR extracts text from a region crop by asking a multimodal LLM.
// Used when Tesseract is unavailable or fails; slower but handles stylized
// lettering that defeats classical OCR.
type VisionOCR struct {
	client *openai.Client
	model  string
	logger domain.Logger
}

// NewVisionOCR creates the backend from the resolved provider config.
func NewVisionOCR(provider domain.ProviderConfig, logger domain.Logger) *VisionOCR {
	cfg := openai.DefaultConfig(provider.APIKey)
	if provider.BaseURL != "" {
		cfg.BaseURL = provider.BaseURL
	}
	return &VisionOCR{
		client: openai.NewClientWithConfig(cfg),
		model:  provider.Model,
		logger: logger,
	}
}

func (v *VisionOCR) Name() string { return "llm-vision" }

// ExtractText sends the crop as an inline image and returns the model's
// transcription.
func (v *VisionOCR) ExtractText(ctx context.Context, crop image.Image, sourceLang string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: visionSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf("Transcribe the %s text in this image.", sourceLang),
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
