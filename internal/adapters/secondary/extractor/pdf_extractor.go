package extractor

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ragsvc/rag-engine/internal/core/port"
)

// PDFExtractor extracts page-positioned text from PDF documents using
// ledongthuc/pdf's Content() API, rather than its flattened GetPlainText,
// so that runs can be re-sorted top-to-bottom/left-to-right per page and
// prefixed with page markers for the Chunker's page-attribution algorithm.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// lineBreakDelta is the minimum Y movement between successive text runs on
// a page that is treated as a line break rather than a continuation of the
// same line.
const lineBreakDelta = 2.0

// Extract parses content and returns page-marked text: each page's text is
// prefixed with `[Page N]`, runs within a page sorted top-to-bottom
// (descending PDF Y) then left-to-right (X ascending), joined with spaces
// within a line and newlines across a Y-delta.
func (e *PDFExtractor) Extract(ctx context.Context, content []byte, mimeType string) (port.ExtractedDocument, error) {
	if mimeType != "" && mimeType != "application/pdf" {
		return port.ExtractedDocument{}, fmt.Errorf("unsupported mime type for PDF extractor: %s", mimeType)
	}

	select {
	case <-ctx.Done():
		return port.ExtractedDocument{}, ctx.Err()
	default:
	}

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return port.ExtractedDocument{}, fmt.Errorf("opening pdf: %w", err)
	}

	totalPages := pdfReader.NumPage()
	if totalPages == 0 {
		return port.ExtractedDocument{}, fmt.Errorf("pdf has no pages")
	}

	var out strings.Builder
	anyText := false

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		select {
		case <-ctx.Done():
			return port.ExtractedDocument{}, ctx.Err()
		default:
		}

		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			out.WriteString(fmt.Sprintf("[Page %d]\n\n", pageNum))
			continue
		}

		pageText, err := renderPage(page)
		if err != nil {
			// A single unreadable page does not abort the whole document;
			// it is emitted as an empty page so page numbering stays correct.
			pageText = ""
		}

		out.WriteString(fmt.Sprintf("[Page %d]\n", pageNum))
		out.WriteString(pageText)
		out.WriteString("\n\n")

		if strings.TrimSpace(pageText) != "" {
			anyText = true
		}
	}

	if !anyText {
		return port.ExtractedDocument{}, fmt.Errorf("no text content found in PDF (may be scanned/image-based)")
	}

	return port.ExtractedDocument{Text: out.String(), PageCount: totalPages}, nil
}

// renderPage sorts a page's text runs top-to-bottom, left-to-right and
// joins them into lines, inserting a line break whenever Y moves by more
// than lineBreakDelta between successive runs.
func renderPage(page pdf.Page) (string, error) {
	content := page.Content()
	texts := make([]pdf.Text, len(content.Text))
	copy(texts, content.Text)

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			// PDF Y grows upward; "top to bottom" is descending Y.
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var line strings.Builder
	var out strings.Builder
	lastY := 0.0
	first := true

	flush := func() {
		if line.Len() > 0 {
			out.WriteString(strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}

	for _, t := range texts {
		if first {
			first = false
			lastY = t.Y
		} else if lastY-t.Y > lineBreakDelta {
			flush()
			out.WriteString("\n")
			lastY = t.Y
		}
		line.WriteString(t.S)
		if !strings.HasSuffix(t.S, " ") {
			line.WriteString(" ")
		}
	}
	flush()

	return out.String(), nil
}

// SupportedTypes returns the list of supported MIME types.
func (e *PDFExtractor) SupportedTypes() []string {
	return []string{"application/pdf"}
}

// Ensure PDFExtractor implements ContentExtractor.
var _ port.ContentExtractor = (*PDFExtractor)(nil)
