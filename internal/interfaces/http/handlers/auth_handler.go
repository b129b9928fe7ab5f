package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/VitaQuote/internal/infrastructure/database/redis"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/middleware"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// AuthService is the slice of the auth application service the HTTP layer
// needs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*redis.Session, error)
	Heartbeat(ctx context.Context, token string) (*redis.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves login, logout, and heartbeat.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token      string    `json:"token"`
	Username   string    `json:"username"`
	IssuedAt   time.Time `json:"issued_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func toSessionResponse(sess *redis.Session) sessionResponse {
	return sessionResponse{
		Token:      sess.Token,
		Username:   sess.Username,
		IssuedAt:   sess.IssuedAt,
		LastSeenAt: sess.LastSeenAt,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeAppError(w, errors.New(errors.ErrCodeBadRequest, "username and password are required"))
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Heartbeat handles POST /auth/heartbeat.  The token comes from the
// Authorization header, same as any guarded route.
func (h *AuthHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	sess, err := h.auth.Heartbeat(r.Context(), middleware.BearerToken(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
