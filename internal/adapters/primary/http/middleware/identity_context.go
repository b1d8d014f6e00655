package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// identityKey is the context key for the resolved entity.Identity. A
// missing key means the caller is anonymous.
const identityKey = "identity"

// IdentityContext resolves the full entity.Identity (roles, owner
// memberships) for a caller JWTAuth already authenticated, upserting the
// user record on first sight of a verified subject. It must run after
// JWTAuth. A request with no JWT subject passes through with no identity
// set, since several access levels (public, passcode) permit anonymous
// callers — document-level authorization is enforced later by
// access.Resolver, not here.
func IdentityContext(users port.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		subject, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email, _ := GetUserEmail(c)

		if err := users.Upsert(ctx, &entity.User{ID: subject, Email: email}); err != nil {
			slog.ErrorContext(ctx, "failed to upsert user", slog.String("error", err.Error()), slog.String("operation_id", GetOperationID(c)))
			abortWithError(c, http.StatusInternalServerError, entity.ErrInternal)
			return
		}

		user, err := users.FindByID(ctx, subject)
		if err != nil {
			slog.ErrorContext(ctx, "failed to load user", slog.String("error", err.Error()), slog.String("operation_id", GetOperationID(c)))
			abortWithError(c, http.StatusInternalServerError, entity.ErrInternal)
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// GetIdentity retrieves the resolved caller from the Gin context. It
// returns (nil, false) for an anonymous request.
func GetIdentity(c *gin.Context) (*entity.User, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*entity.User)
	return user, ok
}
