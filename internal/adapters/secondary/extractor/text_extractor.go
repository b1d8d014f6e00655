package extractor

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ragsvc/rag-engine/internal/core/port"
)

// TextExtractor handles raw UTF-8 text uploads. A plain-text source has no
// pages, so it is wrapped wholesale as page 1 to satisfy the chunker's
// invariant that every chunk carries a page_number.
type TextExtractor struct{}

// NewTextExtractor creates a new plain-text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract validates the content is valid UTF-8 and wraps it as a single
// marked page.
func (e *TextExtractor) Extract(ctx context.Context, content []byte, mimeType string) (port.ExtractedDocument, error) {
	select {
	case <-ctx.Done():
		return port.ExtractedDocument{}, ctx.Err()
	default:
	}

	if len(content) == 0 {
		return port.ExtractedDocument{}, fmt.Errorf("text content is empty")
	}
	if !utf8.Valid(content) {
		return port.ExtractedDocument{}, fmt.Errorf("text content is not valid UTF-8")
	}

	return port.ExtractedDocument{
		Text:      "[Page 1]\n" + string(content),
		PageCount: 1,
	}, nil
}

// SupportedTypes returns the list of supported MIME types.
func (e *TextExtractor) SupportedTypes() []string {
	return []string{"text/plain"}
}

// Ensure TextExtractor implements ContentExtractor.
var _ port.ContentExtractor = (*TextExtractor)(nil)
