package middleware

import (
	"context"
	"net/http"
	"strings"

	"app/internal/logger"
	"app/internal/util"
)

// Injected key type to avoid context collisions
type contextKey string

const UserContextKey = contextKey("user")

// Identity is the verified caller placed in the request context by the auth
// middleware.
type Identity struct {
	UserID    int64
	IsPremium bool
}

// IdentityFromContext returns the authenticated identity, or nil when the
// request carried no valid token.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(UserContextKey).(*Identity)
	return identity
}

func identityFromRequest(r *http.Request, jwtSecret string) (*Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil
	}

	claims, err := util.ValidateJWT(parts[1], jwtSecret)
	if err != nil {
		return nil, err
	}
	userID, err := claims.ResolveUserID()
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: userID, IsPremium: claims.IsPremium}, nil
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logger.New()
			if r.Header.Get("Authorization") == "" {
				logger.Error().Msg("Authorization header missing")
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}
			identity, err := identityFromRequest(r, jwtSecret)
			if err != nil {
				logger.Error().Msgf("Invalid token: %+v", err)
				http.Error(w, "Invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}
			if identity == nil {
				logger.Error().Msg("Invalid authorization header")
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves an identity when a valid bearer token is
// present and lets the request through anonymously otherwise. Used by routes
// that gate premium content but serve free content to everyone.
func OptionalAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := identityFromRequest(r, jwtSecret)
			if err == nil && identity != nil {
				ctx := context.WithValue(r.Context(), UserContextKey, identity)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}
