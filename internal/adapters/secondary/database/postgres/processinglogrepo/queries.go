package processinglogrepo

const (
	queryInsert = `
		INSERT INTO processing_log_entries
			(user_document_id, document_slug, stage, status, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`

	queryTail = `
		SELECT id, user_document_id, document_slug, stage, status, message, metadata, created_at
		FROM (
			SELECT id, user_document_id, document_slug, stage, status, message, metadata, created_at
			FROM processing_log_entries
			WHERE user_document_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`
)
