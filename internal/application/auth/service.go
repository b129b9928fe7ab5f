// Package auth implements login, logout, heartbeat, and request
// authorization over the Redis session store.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/VitaQuote/internal/domain/user"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/redis"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// SessionStore is the session persistence contract; satisfied by
// redis.SessionStore.
type SessionStore interface {
	Save(ctx context.Context, sess *redis.Session) (replaced bool, err error)
	Get(ctx context.Context, token string) (*redis.Session, error)
	Heartbeat(ctx context.Context, token string) (*redis.Session, error)
	Delete(ctx context.Context, token string) error
}

// Service handles operator authentication.
type Service struct {
	users      user.Repository
	sessions   SessionStore
	bcryptCost int
	log        logging.Logger

	// onLogin receives "success", "bad_credentials", "inactive" or "replaced"
	// for the login counter.  May be nil.
	onLogin func(result string)
}

// NewService builds the auth service.
func NewService(users user.Repository, sessions SessionStore, bcryptCost int, log logging.Logger) *Service {
	return &Service{users: users, sessions: sessions, bcryptCost: bcryptCost, log: log}
}

// OnLogin installs a login-result hook.
func (s *Service) OnLogin(fn func(result string)) {
	s.onLogin = fn
}

func (s *Service) report(result string) {
	if s.onLogin != nil {
		s.onLogin(result)
	}
}

// Login verifies credentials and opens a session.  A successful login for a
// user with a live session replaces that session: one device at a time.
func (s *Service) Login(ctx context.Context, username, password string) (*redis.Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeUserNotFound) {
			s.report("bad_credentials")
			// Same answer as a wrong password so usernames cannot be probed.
			return nil, errors.New(errors.ErrCodeBadCredentials, "invalid username or password")
		}
		return nil, err
	}

	if !u.CanLogin() {
		s.report("inactive")
		return nil, errors.New(errors.ErrCodeUserInactive, "account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.report("bad_credentials")
		return nil, errors.New(errors.ErrCodeBadCredentials, "invalid username or password")
	}

	now := time.Now().UTC()
	sess := &redis.Session{
		Token:      uuid.NewString(),
		UserID:     u.ID,
		Username:   u.Username,
		IssuedAt:   now,
		LastSeenAt: now,
	}

	replaced, err := s.sessions.Save(ctx, sess)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		// Login already succeeded; the timestamp is advisory.
		s.log.Warn("failed to record last login", logging.String("username", username), logging.Err(err))
	}

	if replaced {
		s.report("replaced")
	} else {
		s.report("success")
	}

	s.log.Info("user logged in",
		logging.String("username", u.Username),
		logging.Bool("replaced_session", replaced),
	)
	return sess, nil
}

// Authorize resolves a bearer token to its session.
func (s *Service) Authorize(ctx context.Context, token string) (*redis.Session, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "missing session token")
	}
	return s.sessions.Get(ctx, token)
}

// Heartbeat extends the session's lifetime and reports its refreshed state.
func (s *Service) Heartbeat(ctx context.Context, token string) (*redis.Session, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "missing session token")
	}
	return s.sessions.Heartbeat(ctx, token)
}

// Logout closes the session.  Logging out of a dead session succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// HashPassword produces a bcrypt hash for account provisioning.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to hash password")
	}
	return string(hash), nil
}
