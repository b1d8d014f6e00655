// Package port defines output ports (interfaces) for the application.
package port

import "context"

// ExtractedDocument is the result of the Chunker's PDF phase: page-marked
// text ready for the chunking phase, plus the page count so the chunker
// can validate every chunk's page_number falls within range.
type ExtractedDocument struct {
	Text      string
	PageCount int
}

// ContentExtractor turns a binary document into page-marked text. Each
// page's text is prefixed with a `[Page N]` marker; everyone downstream of
// the extractor reads structured page numbers off chunk metadata, never
// the marker text itself.
type ContentExtractor interface {
	// Extract parses content and returns page-marked text. Returns an
	// error if the mime type is unsupported or the document has no
	// extractable text (e.g. a scanned, image-only PDF).
	Extract(ctx context.Context, content []byte, mimeType string) (ExtractedDocument, error)

	// SupportedTypes returns the list of supported MIME types.
	SupportedTypes() []string
}

// ContentExtractorFactory creates the appropriate extractor based on content type.
type ContentExtractorFactory interface {
	// GetExtractor returns the appropriate extractor for the given content type.
	// Returns an error if the content type is not supported.
	GetExtractor(contentType string) (ContentExtractor, error)
}
