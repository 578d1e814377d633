package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

var (
	// ErrSessionIDNotUnique indicates that the session ID used to create a
	// session is already being used by another session.
	ErrSessionIDNotUnique = errors.New("session ID is not unique")

	// ErrSessionDNE indicates that an interaction was attempted against a
	// session that does not exist.
	ErrSessionDNE = errors.New("session does not exist")
)

// NewManager creates a Manager instance.
func NewManager(logger *zap.Logger, redis *redis.Client) *Manager {
	return &Manager{
		logger: logger,
		redis:  redis,
	}
}

// Manager manages Session interactions.
type Manager struct {
	logger *zap.Logger
	redis  *redis.Client
}

// CreateSession creates a new Session. This session should not already exist.
// If it does, an error will be thrown.
func (m Manager) CreateSession(
	ctx context.Context,
	sess Session,
	exp time.Duration,
) error {
	if err := m.setnx(ctx, keygen(sessionPrefix, sess.ID), sess, exp); err != nil {
		return err
	}

	return m.setnx(ctx, keygen(lastActivityAtPrefix, sess.ID), sess.LastActivityAt, exp)
}

// RetrieveSession gets the Session related to the sessionID passed. Sessions
// past their absolute expiration, or created before their user's sessions
// were invalidated, are deleted and reported as ErrSessionDNE.
func (m Manager) RetrieveSession(
	ctx context.Context,
	sessionID string,
) (*Session, error) {
	var sess Session
	if err := m.get(ctx, keygen(sessionPrefix, sessionID), &sess); err != nil {
		return nil, err
	}

	if sess.IsExpired(time.Now()) {
		m.logger.Debug("absolute session expiration", zap.String("session-id", sessionID))
		return nil, m.deleteDNE(ctx, sess)
	}

	var invalidAt time.Time
	err := m.get(ctx, keygen(invalidateUserSessionsPrefix, strconv.FormatInt(sess.User.ID, 10)), &invalidAt)
	if err != nil && !errors.Is(err, ErrSessionDNE) {
		return nil, err
	}
	if err == nil && sess.CreatedAt.Before(invalidAt) {
		m.logger.Debug("invalidated session", zap.String("session-id", sessionID))
		return nil, m.deleteDNE(ctx, sess)
	}

	var lastActivityAt time.Time
	if err := m.get(ctx, keygen(lastActivityAtPrefix, sessionID), &lastActivityAt); err != nil {
		return nil, err
	}

	sess.LastActivityAt = lastActivityAt

	return &sess, nil
}

// TouchSession updates the LastActivityAt field of the session identified by
// sessionID and extends its expiration. This session must already exist. If
// it does not exist, an error will be thrown.
func (m Manager) TouchSession(
	ctx context.Context,
	sessionID string,
	exp time.Duration,
) error {
	if err := m.setxx(
		ctx,
		keygen(lastActivityAtPrefix, sessionID),
		time.Now(),
		exp,
	); err != nil {
		return err
	}

	set, err := m.redis.Expire(ctx, keygen(sessionPrefix, sessionID), exp).Result()
	if err != nil {
		return err
	}
	if !set {
		return ErrSessionDNE
	}

	return nil
}

// DeleteSession deletes the specified Session.
func (m Manager) DeleteSession(ctx context.Context, sess Session) error {
	if err := m.redis.Del(
		ctx,
		keygen(sessionPrefix, sess.ID),
		keygen(lastActivityAtPrefix, sess.ID),
	).Err(); err != nil {
		return fmt.Errorf("delete session; error: %w", err)
	}

	return nil
}

// InvalidateUserSessionsBefore invalidates all sessions of the user
// identified by userID created before dt.
func (m Manager) InvalidateUserSessionsBefore(
	ctx context.Context,
	userID int64,
	dt time.Time,
) error {
	b, err := encode(dt)
	if err != nil {
		return err
	}

	if err := m.redis.Set(
		ctx,
		keygen(invalidateUserSessionsPrefix, strconv.FormatInt(userID, 10)),
		b,
		0,
	).Err(); err != nil {
		return fmt.Errorf("invalidate user sessions; error: %w", err)
	}

	return nil
}

func (m Manager) deleteDNE(ctx context.Context, sess Session) error {
	if err := m.DeleteSession(ctx, sess); err != nil {
		return err
	}
	return ErrSessionDNE
}

func (m Manager) setxx(
	ctx context.Context,
	key string,
	val interface{},
	exp time.Duration,
) error {
	b, err := encode(val)
	if err != nil {
		return err
	}

	set, err := m.redis.SetXX(ctx, key, b, exp).Result()
	if err != nil {
		return err
	}
	if !set {
		return ErrSessionDNE
	}

	return nil
}

func (m Manager) setnx(
	ctx context.Context,
	key string,
	val interface{},
	exp time.Duration,
) error {
	b, err := encode(val)
	if err != nil {
		return err
	}

	set, err := m.redis.SetNX(ctx, key, b, exp).Result()
	if err != nil {
		return err
	}
	if !set {
		return ErrSessionIDNotUnique
	}
	return nil
}

func (m Manager) get(ctx context.Context, key string, dst interface{}) error {
	res, err := m.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrSessionDNE
	}
	if err != nil {
		return err
	}

	return decode([]byte(res), dst)
}

// --- helpers ---

const (
	sessionPrefix                = "suihei-session-"
	lastActivityAtPrefix         = "suihei-last-activity-at-"
	invalidateUserSessionsPrefix = "suihei-invalidate-user-sessions-"
)

func keygen(prefix, id string) string {
	return fmt.Sprintf("%s%s", prefix, id)
}

func encode(obj interface{}) ([]byte, error) {
	return msgpack.Marshal(obj)
}

func decode(b []byte, obj interface{}) error {
	return msgpack.Unmarshal(b, obj)
}
