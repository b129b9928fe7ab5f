package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitaQuote/internal/infrastructure/database/redis"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

type fakeAuthService struct {
	session   *redis.Session
	loginErr  error
	heartErr  error
	logoutErr error

	loggedOut string
}

func (f *fakeAuthService) Login(_ context.Context, username, password string) (*redis.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session, nil
}

func (f *fakeAuthService) Heartbeat(_ context.Context, token string) (*redis.Session, error) {
	if f.heartErr != nil {
		return nil, f.heartErr
	}
	return f.session, nil
}

func (f *fakeAuthService) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	return f.logoutErr
}

func testSession() *redis.Session {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return &redis.Session{
		Token:      "tok-1",
		UserID:     uuid.New(),
		Username:   "ana",
		IssuedAt:   now,
		LastSeenAt: now,
	}
}

func TestLoginSuccess(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{session: testSession()})

	body := strings.NewReader(`{"username":"ana","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, "ana", resp.Username)
}

func TestLoginBadCredentials(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{
		loginErr: errors.New(errors.ErrCodeBadCredentials, "invalid username or password"),
	})

	body := strings.NewReader(`{"username":"ana","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeBadCredentials.String())
}

func TestLoginMissingFields(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{session: testSession()})

	body := strings.NewReader(`{"username":"ana"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginMalformedBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{session: testSession()})

	body := strings.NewReader(`{"username":`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeBadRequest.String())
}

func TestHeartbeat(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{session: testSession()})

	req := httptest.NewRequest(http.MethodPost, "/auth/heartbeat", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	h.Heartbeat(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok-1"`)
}

func TestHeartbeatSupersededSession(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{
		heartErr: errors.New(errors.ErrCodeSessionSuperseded, "signed in from another device"),
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/heartbeat", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	h.Heartbeat(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeSessionSuperseded.String())
}

func TestLogout(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tok-1", svc.loggedOut)
}
