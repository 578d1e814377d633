package session

import (
	"context"
	"sync"
	"time"
)

// NewMock creates a Mock instance. Mock mirrors Manager's behavior in memory.
func NewMock() *Mock {
	return &Mock{
		mutex:         new(sync.Mutex),
		sessions:      make(map[string]MockSession),
		invalidations: make(map[int64]time.Time),
	}
}

type Mock struct {
	mutex         *sync.Mutex
	sessions      map[string]MockSession
	invalidations map[int64]time.Time
}

type MockSession struct {
	Session
	ExpiresAt time.Time
}

func (m *Mock) CreateSession(_ context.Context, sess Session, exp time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.sessions[sess.ID]; ok {
		return ErrSessionIDNotUnique
	}

	m.sessions[sess.ID] = MockSession{
		Session:   sess,
		ExpiresAt: time.Now().Add(exp),
	}
	return nil
}

func (m *Mock) RetrieveSession(_ context.Context, id string) (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionDNE
	}

	now := time.Now()
	if sess.ExpiresAt.Before(now) || sess.IsExpired(now) {
		delete(m.sessions, id)
		return nil, ErrSessionDNE
	}

	invalidAt, ok := m.invalidations[sess.User.ID]
	if ok && sess.CreatedAt.Before(invalidAt) {
		delete(m.sessions, id)
		return nil, ErrSessionDNE
	}

	out := sess.Session
	return &out, nil
}

func (m *Mock) TouchSession(_ context.Context, id string, exp time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	fetched, ok := m.sessions[id]
	if !ok {
		return ErrSessionDNE
	}

	fetched.LastActivityAt = time.Now()
	fetched.ExpiresAt = time.Now().Add(exp)
	m.sessions[id] = fetched

	return nil
}

func (m *Mock) DeleteSession(_ context.Context, sess Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.sessions, sess.ID)

	return nil
}

func (m *Mock) InvalidateUserSessionsBefore(
	_ context.Context,
	userID int64,
	dt time.Time,
) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.invalidations[userID] = dt

	return nil
}
