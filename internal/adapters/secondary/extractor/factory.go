// Package extractor provides content extraction adapters for different document types.
package extractor

import (
	"fmt"

	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Factory creates content extractors based on mime type.
type Factory struct {
	pdfExtractor  *PDFExtractor
	textExtractor *TextExtractor
}

// NewFactory creates a new extractor factory.
func NewFactory() *Factory {
	return &Factory{
		pdfExtractor:  NewPDFExtractor(),
		textExtractor: NewTextExtractor(),
	}
}

// GetExtractor returns the appropriate extractor for the given mime type.
func (f *Factory) GetExtractor(contentType string) (port.ContentExtractor, error) {
	switch contentType {
	case "application/pdf":
		return f.pdfExtractor, nil
	case "text/plain":
		return f.textExtractor, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// Ensure Factory implements ContentExtractorFactory.
var _ port.ContentExtractorFactory = (*Factory)(nil)
