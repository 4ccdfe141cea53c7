// Package translate provides the translation backends: an OpenAI-compatible
// chat model and a sentinel placeholder used when every model call fails.
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"manga-translator/internal/domain"
)

// ErrorSentinel marks a failed translation inside otherwise-successful
// output. Blocks carrying it stay visible and editable instead of being
// dropped.
const ErrorSentinel = "[ERRO]"

const translatorSystemPrompt = `You are a professional translator specialized in manga, manhwa and webtoons.

Rules:
1. Translate ONLY the given text. No explanations, notes or commentary.
2. Keep the tone and emotion of the original (humor, anger, fear, tension).
3. Adapt slang, idioms and onomatopoeia naturally into the target language.
4. Keep honorifics (-san, -kun, -senpai, hyung, sunbae) when culturally meaningful.
5. Sound effects get short, punchy renderings.
6. Do not translate character names.
7. Return ONLY the translated text, without quotes or extra formatting.`

// Sentinel prefixes a failed translation with the error marker.
func Sentinel(text string) string {
	return ErrorSentinel + " " + text
}

// OpenAITranslator implements translation against any OpenAI-compatible
// chat completion endpoint (OpenAI, OpenRouter, local proxies). The batch
// path sends one combined indexed request and tolerates partial or
// reordered output.
type OpenAITranslator struct {
	client *openai.Client
	model  string
	logger domain.Logger
}

// NewOpenAITranslator creates the backend from the resolved provider config.
func NewOpenAITranslator(provider domain.ProviderConfig, logger domain.Logger) *OpenAITranslator {
	cfg := openai.DefaultConfig(provider.APIKey)
	if provider.BaseURL != "" {
		cfg.BaseURL = provider.BaseURL
	}
	return &OpenAITranslator{
		client: openai.NewClientWithConfig(cfg),
		model:  provider.Model,
		logger: logger,
	}
}

func (t *OpenAITranslator) Name() string { return "openai-chat" }

// Translate translates a single text.
func (t *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	prompt := fmt.Sprintf("Translate the following text from %s to %s:\n\n%s",
		languageName(sourceLang), languageName(targetLang), text)
	return t.complete(ctx, prompt, 500)
}

// TranslateBatch translates several texts in one indexed request. Entries
// that cannot be recovered from the response come back as sentinels; the
// result always matches the input's length and order.
func (t *OpenAITranslator) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var numbered strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&numbered, "[%d] %s\n", i+1, text)
	}
	prompt := fmt.Sprintf(
		"Translate the %d snippets below from %s to %s. "+
			"They are speech bubbles from a manga/manhwa page; keep the same numbering in your reply.\n"+
			"Return ONLY the numbered translations, one per line.\n\n%s",
		len(texts), languageName(sourceLang), languageName(targetLang), numbered.String())

	raw, err := t.complete(ctx, prompt, 1500)
	if err != nil {
		return nil, err
	}
	results := ParseIndexedResponse(raw, texts)
	t.logger.Info("Batch translated blocks", "count", len(results))
	return results, nil
}

func (t *OpenAITranslator) complete(ctx context.Context, userPrompt string, maxTokens int) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: 0.3,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: translatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ParseIndexedResponse recovers per-index translations from a batched model
// reply. Each input index is scanned for independently, so a partially
// answered or reordered response only degrades the missing entries, which
// fall back to their sentinel.
func ParseIndexedResponse(raw string, texts []string) []string {
	results := make([]string, len(texts))
	for i, text := range texts {
		pattern := regexp.MustCompile(fmt.Sprintf(`\[%d\]\s*(.+)`, i+1))
		if m := pattern.FindStringSubmatch(raw); m != nil {
			results[i] = strings.TrimSpace(m[1])
		} else {
			results[i] = Sentinel(text)
		}
	}
	return results
}

var languageNames = map[string]string{
	"ja":    "Japanese",
	"ko":    "Korean",
	"zh":    "Chinese",
	"en":    "English",
	"pt-br": "Brazilian Portuguese",
	"es":    "Spanish",
	"fr":    "French",
	"de":    "German",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
