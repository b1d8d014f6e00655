package conversationrepo

const conversationColumns = `
	id, session_id, user_id, document_slugs, question, answer,
	model_requested, model_actual, model_override_applied, retrieval_metadata,
	created_at, completed_at, errored, rating
`

const (
	queryCreate = `
		INSERT INTO conversations (` + conversationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	queryFindByID = `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1
	`

	queryUpdateRating = `
		UPDATE conversations
		SET rating = $2
		WHERE id = $1
	`
)
