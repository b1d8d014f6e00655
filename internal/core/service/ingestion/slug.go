package ingestion

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// slugify lowercases title, replaces runs of non-alphanumeric characters
// with a single hyphen, and trims leading/trailing hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "document"
	}
	return s
}

// uniqueSlug slugifies title and appends a short suffix if the base slug
// is already taken.
func uniqueSlug(ctx context.Context, documents port.DocumentRepository, title string) (string, error) {
	base := slugify(title)
	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		_, err := documents.FindBySlug(ctx, candidate)
		if err == entity.ErrDocumentNotFound {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}
	return candidate, nil
}
