package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tjper/suihei/internal/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionMiddleware(t *testing.T) {
	manager := session.NewMock()
	sess := session.New("known", session.User{ID: 5, Username: "known"}, time.Hour)
	require.Nil(t, manager.CreateSession(context.Background(), *sess, time.Hour))

	tests := map[string]struct {
		cookie *http.Cookie
		userID int64
		authed bool
	}{
		"anonymous":       {cookie: nil, authed: false},
		"unknown session": {cookie: Cookie("unknown", CookieOptions{}), authed: false},
		"known session":   {cookie: Cookie("known", CookieOptions{}), userID: 5, authed: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var (
				called bool
				user   session.User
				authed bool
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				user, authed = session.UserFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodPost, "/query", nil)
			if test.cookie != nil {
				req.AddCookie(test.cookie)
			}
			rr := httptest.NewRecorder()

			Session(zap.NewNop(), manager, time.Hour)(next).ServeHTTP(rr, req)

			require.True(t, called)
			require.Equal(t, test.authed, authed)
			require.Equal(t, test.userID, user.ID)
		})
	}
}

func TestAccessSessionID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query", nil)

	access := NewAccess(rr, req)
	_, ok := access.SessionID()
	require.False(t, ok)

	access.SetSessionID("abc", CookieOptions{Domain: "localhost"})
	access.ClearSessionID(CookieOptions{Domain: "localhost"})

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 2)
	require.Equal(t, "abc", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, -1, cookies[1].MaxAge)
}
