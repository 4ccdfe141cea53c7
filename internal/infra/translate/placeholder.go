package translate

import "context"

// Placeholder is the terminal backend of the translation chain. It never
// fails and marks everything it touches with the error sentinel, so the
// pipeline can persist blocks even when no model is reachable.
type Placeholder struct{}

// NewPlaceholder creates the sentinel backend.
func NewPlaceholder() *Placeholder { return &Placeholder{} }

func (p *Placeholder) Name() string { return "placeholder" }

func (p *Placeholder) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return Sentinel(text), nil
}

func (p *Placeholder) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Sentinel(t)
	}
	return out, nil
}
