package documentrepo

const documentColumns = `
	slug, title, subtitle, owner_slug, access_level, passcode,
	chunk_limit_override, forced_model, embedding_type, active,
	metadata, downloads
`

const (
	queryCreate = `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	queryFindBySlug = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE slug = $1
	`

	queryListActive = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE active = true
		ORDER BY slug ASC
	`

	queryListByOwner = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_slug = $1
		ORDER BY slug ASC
	`

	queryUpdate = `
		UPDATE documents
		SET title = $2, subtitle = $3, owner_slug = $4, access_level = $5, passcode = $6,
			chunk_limit_override = $7, forced_model = $8, embedding_type = $9, active = $10,
			metadata = $11, downloads = $12
		WHERE slug = $1
	`

	queryDelete = `
		DELETE FROM documents
		WHERE slug = $1
	`
)
