// Package session provides stateful, Redis backed client sessions.
package session

import (
	"time"
)

// New creates a Session for user. The Session expires absoluteDuration from
// now regardless of activity.
func New(
	id string,
	user User,
	absoluteDuration time.Duration,
) *Session {
	now := time.Now()
	return &Session{
		ID:                 id,
		User:               user,
		AbsoluteExpiration: now.Add(absoluteDuration),
		LastActivityAt:     now,
		CreatedAt:          now,
	}
}

// Session represents a client Session.
type Session struct {
	// ID is the unique identifier of the Session. This identifier needs to be
	// crytographically secure pseudo-random number.
	ID string `msgpack:"id"`

	// User is the session User.
	User User `msgpack:"user"`

	// AbsoluteExpiration is the time at which the Session is considered expired
	// regardless of recent activity. User must then re-authenticate with
	// service.
	AbsoluteExpiration time.Time `msgpack:"absoluteExpiration"`

	// LastActivityAt is the last time the Session was interacted with.
	LastActivityAt time.Time `msgpack:"lastActivityAt"`

	// CreatedAt is the time the Session was created.
	CreatedAt time.Time `msgpack:"createdAt"`
}

// IsAuthorized ensures that the session is authorized to interact with the
// specified user ID.
func (s Session) IsAuthorized(userID int64) bool {
	return s.User.ID == userID
}

// IsExpired checks if the Session has passed its absolute expiration.
func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.AbsoluteExpiration)
}

// Equal checks if the passed Session is equal to the receiver Session.
func (s Session) Equal(s2 Session) bool {
	equal := true
	equal = equal && (s.ID == s2.ID)
	equal = equal && (s.User == s2.User)
	equal = equal && s.AbsoluteExpiration.Equal(s2.AbsoluteExpiration)
	equal = equal && s.LastActivityAt.Equal(s2.LastActivityAt)
	equal = equal && s.CreatedAt.Equal(s2.CreatedAt)

	return equal
}
