package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vitohq/docintel/pkg/textextract"
)

const ocrPrompt = "Extract ALL text visible in this image. Return only the text content, preserving the original formatting as closely as possible."

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) ProcessDocument(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	start := time.Now()

	// Born-digital documents carry their own text layer; no vision call
	// needed for those.
	if hasTextLayer(mimeType) {
		pages, err := textPages(data, mimeType)
		if err != nil {
			return nil, err
		}
		return &Result{
			Pages:            pages,
			Provider:         "openai",
			ModelVersion:     p.model,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}, nil
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ocrPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai recognition: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &Result{
		Pages:            []Page{{Number: 1, Text: strings.TrimSpace(content)}},
		Provider:         "openai",
		ModelVersion:     resp.Model,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

func hasTextLayer(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "application/pdf", "text/plain":
		return true
	default:
		return false
	}
}

func textPages(data []byte, mimeType string) ([]Page, error) {
	extracted, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), mimeType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	pages := make([]Page, len(extracted.Pages))
	for i, text := range extracted.Pages {
		pages[i] = Page{Number: i + 1, Text: text}
	}
	return pages, nil
}
