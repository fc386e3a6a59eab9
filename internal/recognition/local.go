package recognition

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// LocalProvider recognizes born-digital PDFs and plain text directly and
// shells out to tesseract for images. No network calls; used for
// development and air-gapped deployments.
type LocalProvider struct {
	tesseractPath string
}

func NewLocalProvider() *LocalProvider {
	path, _ := exec.LookPath("tesseract")
	if path == "" {
		path = "tesseract"
	}
	return &LocalProvider{tesseractPath: path}
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) IsAvailable() bool {
	cmd := exec.Command(p.tesseractPath, "--version")
	return cmd.Run() == nil
}

func (p *LocalProvider) ProcessDocument(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	start := time.Now()

	var pages []Page
	if hasTextLayer(mimeType) {
		var err error
		pages, err = textPages(data, mimeType)
		if err != nil {
			return nil, err
		}
	} else {
		text, err := p.ocrImage(ctx, data)
		if err != nil {
			return nil, err
		}
		pages = []Page{{Number: 1, Text: text}}
	}

	return &Result{
		Pages:            pages,
		Provider:         "local",
		ModelVersion:     "tesseract",
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

func (p *LocalProvider) ocrImage(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docintel-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, p.tesseractPath, tmp.Name(), "stdout", "-l", "eng")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}
