package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-storefront/logger"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const identityContextKey = contextKey("identity")

// Guard resolves bearer tokens to users loaded fresh from the store
type Guard struct {
	tokens *utils.TokenManager
	users  store.UserStore
}

// NewGuard creates a Guard verifying tokens with tm
func NewGuard(tm *utils.TokenManager, users store.UserStore) *Guard {
	return &Guard{tokens: tm, users: users}
}

// Authenticate verifies token and loads the account it names. A deleted
// account fails like a bad token so clients re-login.
func (g *Guard) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, utils.Unauthenticated("No token, authorization denied", false)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return models.Identity{}, utils.Unauthenticated("Token is not valid", true)
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Identity{}, utils.Unauthenticated("Token is not valid", true)
	}

	user, err := g.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Identity{}, utils.Unauthenticated("User not found", true)
	}
	if err != nil {
		return models.Identity{}, utils.Unavailable("Database unavailable", err)
	}
	return models.IdentityOf(user), nil
}

// bearerToken extracts the credential from "Bearer <token>"
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Middleware verifies the bearer token and attaches the caller's identity to
// the request context
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			log := logger.WithComponent("auth")
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("request not authenticated")
			utils.WriteError(w, err)
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			utils.WriteError(w, utils.Unauthenticated("User authentication required", false))
			return
		}
		if !identity.IsAdmin {
			utils.WriteError(w, utils.Unauthorized("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a context carrying identity
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFrom returns the identity attached by Middleware
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(models.Identity)
	return identity, ok
}
