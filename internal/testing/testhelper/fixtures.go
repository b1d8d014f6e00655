//go:build integration

package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// TestUser represents a test user with a valid bearer token for
// authenticated requests against the test server.
type TestUser struct {
	ID           string
	Email        string
	Token        string
	BearerHeader string
}

// CreateTestUser creates a user row and returns a TestUser carrying a
// signed JWT valid against the test server's JWTAuth middleware (JWKS is
// unconfigured in tests, so the token is parsed unverified).
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, email string) *TestUser {
	t.Helper()
	ctx := context.Background()

	userID := uuid.NewString()

	_, err := pool.Exec(ctx, `INSERT INTO users (id, email) VALUES ($1, $2)`, userID, email)
	require.NoError(t, err, "failed to create test user")

	token := GenerateTestToken(userID, email)

	return &TestUser{
		ID:           userID,
		Email:        email,
		Token:        token,
		BearerHeader: "Bearer " + token,
	}
}

// CleanupUser removes a test user and every row referencing it.
func CleanupUser(t *testing.T, pool *pgxpool.Pool, userID string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "DELETE FROM user_roles WHERE user_id = $1", userID)
	require.NoError(t, err, "failed to cleanup user roles")

	_, err = pool.Exec(ctx, "DELETE FROM user_owner_access WHERE user_id = $1", userID)
	require.NoError(t, err, "failed to cleanup owner memberships")

	_, err = pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	require.NoError(t, err, "failed to cleanup user")
}

// GrantTestRole grants a user a role, optionally scoped to an owner. Pass a
// nil ownerSlug for super_admin.
func GrantTestRole(t *testing.T, pool *pgxpool.Pool, userID string, scope entity.RoleScope, ownerSlug *string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, scope, owner_slug) VALUES ($1, $2, $3)`,
		userID, scope, ownerSlug)
	require.NoError(t, err, "failed to grant test role")
}

// AddTestOwnerMember adds a user to an owner's plain membership group,
// independent of any role grant.
func AddTestOwnerMember(t *testing.T, pool *pgxpool.Pool, userID, ownerSlug string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO user_owner_access (user_id, owner_slug) VALUES ($1, $2)`,
		userID, ownerSlug)
	require.NoError(t, err, "failed to add owner member")
}

// CreateTestOwner creates an owner and returns its slug.
func CreateTestOwner(t *testing.T, pool *pgxpool.Pool, slug, name string) string {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO owners (slug, name, default_chunk_limit) VALUES ($1, $2, $3)`,
		slug, name, 50)
	require.NoError(t, err, "failed to create test owner")

	return slug
}

// CleanupOwner removes a test owner and its dependent rows.
func CleanupOwner(t *testing.T, pool *pgxpool.Pool, slug string) {
	t.Helper()
	ctx := context.Background()

	_, _ = pool.Exec(ctx, "DELETE FROM user_owner_access WHERE owner_slug = $1", slug)
	_, _ = pool.Exec(ctx, "DELETE FROM user_roles WHERE owner_slug = $1", slug)
	_, err := pool.Exec(ctx, "DELETE FROM owners WHERE slug = $1", slug)
	require.NoError(t, err, "failed to cleanup owner")
}

// CreateTestDocument creates a document and returns its slug.
func CreateTestDocument(t *testing.T, pool *pgxpool.Pool,
	slug, title string, ownerSlug *string, accessLevel entity.AccessLevel, embeddingType entity.EmbeddingType) string {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO documents (slug, title, subtitle, owner_slug, access_level, embedding_type, active, metadata, downloads)
		VALUES ($1, $2, $3, $4, $5, $6, true, '{}'::jsonb, '[]'::jsonb)`,
		slug, title, "", ownerSlug, accessLevel, embeddingType)
	require.NoError(t, err, "failed to create test document")

	return slug
}

// CleanupDocument removes a test document and its chunks from both
// embedding-type tables.
func CleanupDocument(t *testing.T, pool *pgxpool.Pool, slug string) {
	t.Helper()
	ctx := context.Background()

	_, _ = pool.Exec(ctx, "DELETE FROM chunks_openai WHERE document_slug = $1", slug)
	_, _ = pool.Exec(ctx, "DELETE FROM chunks_local WHERE document_slug = $1", slug)
	_, err := pool.Exec(ctx, "DELETE FROM documents WHERE slug = $1", slug)
	require.NoError(t, err, "failed to cleanup document")
}

// CreateTestChunk inserts a single chunk into the table backing
// embeddingType, padding or truncating embedding to the type's
// dimensionality isn't this helper's job: callers must pass a vector of
// the right length.
func CreateTestChunk(t *testing.T, pool *pgxpool.Pool,
	embeddingType entity.EmbeddingType, documentSlug string, ordinal int, text string, embedding []float32) {
	t.Helper()
	ctx := context.Background()

	table := "chunks_openai"
	if embeddingType == entity.EmbeddingTypeLocal {
		table = "chunks_local"
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO `+table+` (document_slug, ordinal, text, embedding, page_number, char_start, char_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		documentSlug, ordinal, text, pgvector.NewVector(embedding), 0, 0, len(text))
	require.NoError(t, err, "failed to create test chunk")
}

// CreateTestUserDocument creates an uploaded-source-file record and returns
// its ID.
func CreateTestUserDocument(t *testing.T, pool *pgxpool.Pool,
	userID, title string, status entity.UserDocumentStatus) string {
	t.Helper()
	ctx := context.Background()

	id := uuid.NewString()

	_, err := pool.Exec(ctx, `
		INSERT INTO user_documents
			(id, user_id, title, status, mime_type, updated_at, requested_access_level)
		VALUES ($1, $2, $3, $4, $5, now(), $6)`,
		id, userID, title, status, "application/pdf", entity.AccessLevelPublic)
	require.NoError(t, err, "failed to create test user document")

	return id
}

// CleanupUserDocument removes a test user document and its processing log.
func CleanupUserDocument(t *testing.T, pool *pgxpool.Pool, id string) {
	t.Helper()
	ctx := context.Background()

	_, _ = pool.Exec(ctx, "DELETE FROM processing_log_entries WHERE user_document_id = $1", id)
	_, err := pool.Exec(ctx, "DELETE FROM user_documents WHERE id = $1", id)
	require.NoError(t, err, "failed to cleanup user document")
}

// UpdateUserDocumentStatus sets a user document's status directly, used to
// simulate a stuck or stale processing job. updated_at is left unchanged.
func UpdateUserDocumentStatus(t *testing.T, pool *pgxpool.Pool, id string, status entity.UserDocumentStatus) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `UPDATE user_documents SET status = $1 WHERE id = $2`, status, id)
	require.NoError(t, err, "failed to update user document status")
}

// CreateTestConversation creates a logged question/answer exchange and
// returns its ID.
func CreateTestConversation(t *testing.T, pool *pgxpool.Pool,
	sessionID string, userID *string, documentSlugs []string, question, answer string) string {
	t.Helper()
	ctx := context.Background()

	id := uuid.NewString()

	_, err := pool.Exec(ctx, `
		INSERT INTO conversations
			(id, session_id, user_id, document_slugs, question, answer,
			 model_requested, model_actual, model_override_applied, retrieval_metadata,
			 created_at, completed_at, errored, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now(), false, NULL)`,
		id, sessionID, userID, documentSlugs, question, answer,
		entity.ChatModelStandard, entity.ChatModelStandard, false, "{}")
	require.NoError(t, err, "failed to create test conversation")

	return id
}

// CleanupConversation removes a test conversation.
func CleanupConversation(t *testing.T, pool *pgxpool.Pool, id string) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", id)
	require.NoError(t, err, "failed to cleanup conversation")
}

// Ptr is a helper function to create a pointer to a value.
func Ptr[T any](v T) *T {
	return &v
}
