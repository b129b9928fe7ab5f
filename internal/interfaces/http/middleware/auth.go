// Package middleware holds the HTTP middleware chain: session auth, request
// logging, and CORS.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/turtacn/VitaQuote/internal/infrastructure/database/redis"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const sessionContextKey contextKey = iota

// SessionAuthenticator resolves a bearer token to a session; satisfied by
// the auth service.
type SessionAuthenticator interface {
	Authorize(ctx context.Context, token string) (*redis.Session, error)
}

// AuthMiddleware guards routes behind a valid login session.
type AuthMiddleware struct {
	auth   SessionAuthenticator
	logger logging.Logger
}

// NewAuthMiddleware creates the session auth middleware.
func NewAuthMiddleware(auth SessionAuthenticator, logger logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// Handler rejects requests without a live session and injects the session
// into the request context for handlers.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		sess, err := m.auth.Authorize(r.Context(), token)
		if err != nil {
			m.logger.Debug("rejected request",
				logging.String("path", r.URL.Path),
				logging.String("code", errors.GetCode(err).String()),
			)
			writeAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	msg := "unauthorized"
	if appErr, ok := err.(*errors.AppError); ok {
		msg = appErr.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errors.HTTPStatusForCode(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code.String(),
		"message": msg,
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// ContextSession returns the session injected by the auth middleware, or nil.
func ContextSession(ctx context.Context) *redis.Session {
	sess, _ := ctx.Value(sessionContextKey).(*redis.Session)
	return sess
}
