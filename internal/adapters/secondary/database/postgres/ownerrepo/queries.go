package ownerrepo

const (
	queryCreate = `
		INSERT INTO owners (slug, name, custom_hostname, default_chunk_limit, forced_model)
		VALUES ($1, $2, $3, $4, $5)
	`

	queryFindBySlug = `
		SELECT slug, name, custom_hostname, default_chunk_limit, forced_model
		FROM owners
		WHERE slug = $1
	`

	queryFindByHostname = `
		SELECT slug, name, custom_hostname, default_chunk_limit, forced_model
		FROM owners
		WHERE custom_hostname = $1
	`

	queryList = `
		SELECT slug, name, custom_hostname, default_chunk_limit, forced_model
		FROM owners
		ORDER BY slug ASC
	`

	queryUpdate = `
		UPDATE owners
		SET name = $2, custom_hostname = $3, default_chunk_limit = $4, forced_model = $5
		WHERE slug = $1
	`
)
