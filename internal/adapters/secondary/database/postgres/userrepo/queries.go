package userrepo

const (
	queryFindByID = `
		SELECT id, email
		FROM users
		WHERE id = $1
	`

	queryUpsert = `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
	`

	queryListRoles = `
		SELECT scope, owner_slug
		FROM user_roles
		WHERE user_id = $1
	`

	queryGrantRole = `
		INSERT INTO user_roles (user_id, scope, owner_slug)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`

	queryRevokeRole = `
		DELETE FROM user_roles
		WHERE user_id = $1 AND scope = $2 AND owner_slug IS NOT DISTINCT FROM $3
	`

	queryIsMember = `
		SELECT EXISTS(
			SELECT 1 FROM user_owner_access WHERE user_id = $1 AND owner_slug = $2
		)
	`

	queryListOwnerSlugsForUser = `
		SELECT owner_slug
		FROM user_owner_access
		WHERE user_id = $1
		ORDER BY owner_slug ASC
	`

	queryAddMember = `
		INSERT INTO user_owner_access (user_id, owner_slug)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	queryRemoveMember = `
		DELETE FROM user_owner_access
		WHERE user_id = $1 AND owner_slug = $2
	`
)
