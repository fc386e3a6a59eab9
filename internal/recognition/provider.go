package recognition

import (
	"context"
	"fmt"

	"github.com/vitohq/docintel/internal/config"
)

// Provider turns a binary document into page-level recognized text plus
// provenance. Results are ephemeral: consumed by extraction and usage
// metering, never persisted verbatim.
type Provider interface {
	ProcessDocument(ctx context.Context, data []byte, mimeType string) (*Result, error)
	Name() string
}

// Page is one recognized page in document order.
type Page struct {
	Number int
	Text   string
}

// Result is the output of a recognition call. len(Pages) is the billing
// unit for usage metering.
type Result struct {
	Pages            []Page
	Provider         string
	ModelVersion     string
	ProcessingTimeMS int64
}

// NewProvider selects the configured recognition backend.
func NewProvider(cfg config.RecognitionConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicKey, cfg.Model), nil
	case "local":
		return NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("unknown recognition provider: %s", cfg.Provider)
	}
}
