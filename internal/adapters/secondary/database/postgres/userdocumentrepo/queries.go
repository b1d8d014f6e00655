package userdocumentrepo

const userDocumentColumns = `
	id, user_id, title, status, error_message, file_path, mime_type, document_slug, updated_at,
	requested_owner_slug, requested_access_level, requested_passcode
`

const (
	queryCreate = `
		INSERT INTO user_documents (` + userDocumentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), $9, $10, $11)
	`

	queryFindByID = `
		SELECT ` + userDocumentColumns + `
		FROM user_documents
		WHERE id = $1
	`

	queryListByUser = `
		SELECT ` + userDocumentColumns + `
		FROM user_documents
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	queryListStuck = `
		SELECT ` + userDocumentColumns + `
		FROM user_documents
		WHERE status = 'processing'
			AND updated_at < now() - ($1 || ' seconds')::interval
			AND NOT (id = ANY($2))
		ORDER BY updated_at ASC
	`

	queryListOrphanedBlobs = `
		SELECT ` + userDocumentColumns + `
		FROM user_documents
		WHERE status = 'error'
			AND file_path IS NOT NULL
			AND updated_at < now() - ($1 || ' seconds')::interval
		ORDER BY updated_at ASC
	`

	queryUpdate = `
		UPDATE user_documents
		SET status = $2, error_message = $3, file_path = $4, document_slug = $5, updated_at = now()
		WHERE id = $1
	`

	queryCompareAndSwapStatus = `
		UPDATE user_documents
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
)
