package recognition

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) ProcessDocument(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	start := time.Now()

	if hasTextLayer(mimeType) {
		pages, err := textPages(data, mimeType)
		if err != nil {
			return nil, err
		}
		return &Result{
			Pages:            pages,
			Provider:         "anthropic",
			ModelVersion:     p.model,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}, nil
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mimeType, encoded),
				anthropic.NewTextBlock(ocrPrompt),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic recognition: %w", err)
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &Result{
		Pages:            []Page{{Number: 1, Text: strings.TrimSpace(content)}},
		Provider:         "anthropic",
		ModelVersion:     string(resp.Model),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}
