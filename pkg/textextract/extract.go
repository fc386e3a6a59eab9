// Package textextract pulls plain text out of born-digital documents.
// Scanned documents come back empty here and are handed to a
// vision-capable recognition provider instead.
package textextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ExtractedText struct {
	// Pages holds the text of each page in document order. Plain-text
	// inputs are a single page.
	Pages []string
}

func Extract(data io.ReaderAt, size int64, mimeType string) (*ExtractedText, error) {
	switch strings.ToLower(mimeType) {
	case ".pdf", "pdf", "application/pdf":
		return extractPDF(data, size)
	case ".txt", "txt", "text/plain":
		return extractTXT(data, size)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", mimeType)
	}
}

func SupportedTypes() []string {
	return []string{"application/pdf", "text/plain"}
}

func extractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return &ExtractedText{Pages: pages}, nil
}

func extractTXT(data io.ReaderAt, size int64) (*ExtractedText, error) {
	buf := make([]byte, size)
	_, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read TXT: %w", err)
	}

	return &ExtractedText{Pages: []string{string(bytes.TrimSpace(buf))}}, nil
}
