package chunkrepo

import "fmt"

// tableFor maps an embedding type to its backing table. Chunks of
// different embedding types carry different vector dimensionality, so
// pgvector requires one fixed-width column per table rather than a single
// polymorphic column.
func tableFor(embeddingType string) (string, bool) {
	switch embeddingType {
	case "openai":
		return "chunks_openai", true
	case "local":
		return "chunks_local", true
	default:
		return "", false
	}
}

func queryInsertBatch(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (document_slug, ordinal, text, embedding, page_number, char_start, char_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, table)
}

func queryDeleteByDocument(table string) string {
	return fmt.Sprintf(`DELETE FROM %s WHERE document_slug = $1`, table)
}

// querySearchSingleDocument ranks chunks of one document by ascending
// cosine distance. 1 - (embedding <=> $2) converts pgvector's distance
// operator into a similarity score in [0, 1] the retrieval engine's
// SimilarityFloor compares against.
func querySearchSingleDocument(table string) string {
	return fmt.Sprintf(`
		SELECT c.document_slug, d.title, c.ordinal, c.text, c.page_number, c.char_start, c.char_end,
			1 - (c.embedding <=> $2) AS similarity
		FROM %s c
		JOIN documents d ON d.slug = c.document_slug
		WHERE c.document_slug = $1
		ORDER BY c.embedding <=> $2
		LIMIT $3
	`, table)
}

// querySearchMultiDocument partitions candidates by document, ranking each
// partition by ascending distance, applies the per-document quota ($3),
// then orders the survivors globally by similarity and caps them at $4.
func querySearchMultiDocument(table string) string {
	return fmt.Sprintf(`
		SELECT document_slug, title, ordinal, text, page_number, char_start, char_end, similarity
		FROM (
			SELECT c.document_slug, d.title, c.ordinal, c.text, c.page_number, c.char_start, c.char_end,
				1 - (c.embedding <=> $2) AS similarity,
				ROW_NUMBER() OVER (PARTITION BY c.document_slug ORDER BY c.embedding <=> $2) AS rank
			FROM %s c
			JOIN documents d ON d.slug = c.document_slug
			WHERE c.document_slug = ANY($1)
		) ranked
		WHERE rank <= $3
		ORDER BY similarity DESC
		LIMIT $4
	`, table)
}
