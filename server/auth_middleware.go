package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the verified *token.SessionToken
	ContextKeySession ContextKey = "session"
)

// RequireAuth is middleware that validates a Bearer session token.
// Expired and invalid tokens are both 401; the client clears its session on either.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			session, err := s.auth.Authenticate(r.Context(), raw)
			switch {
			case err == nil:
			case errors.Is(err, errors.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			case errors.Is(err, errors.ErrTokenInvalid):
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			default:
				log.Error().Err(err).Msg("token verification failed")
				writeError(w, http.StatusInternalServerError, "Authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// SessionFromContext returns the session RequireAuth verified for this request
func SessionFromContext(ctx context.Context) (*token.SessionToken, bool) {
	session, ok := ctx.Value(ContextKeySession).(*token.SessionToken)
	return session, ok
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
