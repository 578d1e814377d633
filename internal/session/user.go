package session

// User is a session user. It holds the user attributes resolvers need
// without a database round trip.
type User struct {
	ID       int64  `msgpack:"id"`
	Username string `msgpack:"username"`
	Nickname string `msgpack:"nickname"`
	IsStaff  bool   `msgpack:"isStaff"`
}
