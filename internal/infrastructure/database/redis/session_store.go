package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/google/uuid"

	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// Session is one authenticated login.
type Session struct {
	Token      string    `json:"-"`
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	IssuedAt   time.Time `json:"issued_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// SessionStore keeps login sessions in Redis with a single-device policy:
// each user owns at most one live session, tracked by a per-user pointer key.
// A new login moves the pointer; the old session's record is left to expire
// so that its next use can be reported as superseded rather than merely
// expired.
type SessionStore struct {
	client *Client
	ttl    time.Duration
	log    logging.Logger
}

// NewSessionStore builds a session store with the given session lifetime.
func NewSessionStore(client *Client, ttl time.Duration, log logging.Logger) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, log: log}
}

func (s *SessionStore) tokenKey(token string) string {
	return s.client.Key("session", token)
}

func (s *SessionStore) userKey(userID uuid.UUID) string {
	return s.client.Key("session", "user", userID.String())
}

// Save stores a new session and points the user's pointer at it, replacing
// any previous session.  It reports whether an earlier session was replaced.
func (s *SessionStore) Save(ctx context.Context, sess *Session) (replaced bool, err error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal session")
	}

	rdb := s.client.Raw()
	userKey := s.userKey(sess.UserID)

	prev, err := rdb.Get(ctx, userKey).Result()
	if err != nil && err != goredis.Nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read session pointer")
	}
	replaced = err == nil && prev != "" && prev != sess.Token

	pipe := rdb.TxPipeline()
	pipe.Set(ctx, s.tokenKey(sess.Token), payload, s.ttl)
	pipe.Set(ctx, userKey, sess.Token, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to store session")
	}

	if replaced {
		s.log.Info("session replaced",
			logging.String("user_id", sess.UserID.String()),
			logging.String("username", sess.Username),
		)
	}
	return replaced, nil
}

// Get loads and validates the session for a token.
//
// A token whose record is gone but whose user pointer now names a different
// token was pushed out by a newer login and is reported as superseded; with
// the record gone and no pointer evidence the session simply expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	rdb := s.client.Raw()

	raw, err := rdb.Get(ctx, s.tokenKey(token)).Result()
	if err == goredis.Nil {
		return nil, errors.New(errors.ErrCodeSessionExpired, "session expired")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read session")
	}

	sess := &Session{}
	if err := json.Unmarshal([]byte(raw), sess); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal session")
	}
	sess.Token = token

	current, err := rdb.Get(ctx, s.userKey(sess.UserID)).Result()
	if err != nil && err != goredis.Nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read session pointer")
	}
	if current != token {
		return nil, errors.New(errors.ErrCodeSessionSuperseded, "session superseded by a newer login")
	}

	return sess, nil
}

// Heartbeat marks the session as seen and extends its lifetime.  It returns
// the refreshed session so callers can report the new last-seen time.
func (s *SessionStore) Heartbeat(ctx context.Context, token string) (*Session, error) {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	sess.LastSeenAt = time.Now().UTC()

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal session")
	}

	pipe := s.client.Raw().TxPipeline()
	pipe.Set(ctx, s.tokenKey(token), payload, s.ttl)
	pipe.Expire(ctx, s.userKey(sess.UserID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to refresh session")
	}
	return sess, nil
}

// Delete removes the session and, when it is still the user's current one,
// its pointer.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeSessionExpired) || errors.IsCode(err, errors.ErrCodeSessionSuperseded) {
			return nil
		}
		return err
	}

	pipe := s.client.Raw().TxPipeline()
	pipe.Del(ctx, s.tokenKey(token))
	pipe.Del(ctx, s.userKey(sess.UserID))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete session")
	}
	return nil
}
