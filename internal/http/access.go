package http

import (
	"context"
	"net/http"
	"time"
)

func NewAccess(w http.ResponseWriter, r *http.Request) *Access {
	return &Access{
		w: w,
		r: r,
	}
}

// AccessMiddleware creates an Access instance and stores it in the context for
// each request processed by the middleware.
func AccessMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access := NewAccess(w, r)
			ctx := WithAccess(r.Context(), access)
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}

type key string

var accessCtxKey key = "access_context_key"

// WithAccess stores an http.Access instance in the passed context. It may then
// be retrieve later with the AccessFromContext function.
func WithAccess(ctx context.Context, access *Access) context.Context {
	return context.WithValue(ctx, accessCtxKey, access)
}

// AccessFromContext may be used to retrieve http.Access from the processes
// context, if it is available.
func AccessFromContext(ctx context.Context) (*Access, bool) {
	access, ok := ctx.Value(accessCtxKey).(*Access)

	return access, ok
}

// Access wraps http related types and makes standard use-cases accessible to
// callers.
type Access struct {
	w http.ResponseWriter
	r *http.Request
}

// CookieOptions configures the session cookie written to clients.
type CookieOptions struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

const sessionKey = "_suihei-session"

// SessionID retrieves the session ID from the http Access instance.
func (a Access) SessionID() (string, bool) {
	id := SessionFromRequest(a.r)
	return id, id != ""
}

// SetSessionID sets the session ID on the client via the underlying Access
// instance.
func (a Access) SetSessionID(sessionID string, options CookieOptions) {
	http.SetCookie(a.w, Cookie(sessionID, options))
}

// ClearSessionID expires the client's session cookie.
func (a Access) ClearSessionID(options CookieOptions) {
	cookie := Cookie("", options)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(a.w, cookie)
}

// Cookie builds the session cookie holding id.
func Cookie(id string, options CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     sessionKey,
		Value:    id,
		Domain:   options.Domain,
		Path:     "/",
		Secure:   options.Secure,
		HttpOnly: true,
		SameSite: options.SameSite,
	}
}

// SessionFromRequest retrieves the session ID carried by req. An empty string
// is returned when req carries no session cookie.
func SessionFromRequest(req *http.Request) string {
	cookie, err := req.Cookie(sessionKey)
	if err != nil {
		return ""
	}
	return cookie.Value
}
