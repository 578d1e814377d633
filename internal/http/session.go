package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tjper/suihei/internal/session"

	"go.uber.org/zap"
)

// ISessionManager encompasses all manners by which a session may be interacted
// with.
type ISessionManager interface {
	RetrieveSession(context.Context, string) (*session.Session, error)
	TouchSession(context.Context, string, time.Duration) error
}

// Session retrieves the session identified by the request's session cookie
// and stores it on the request context. Requests without a session, or with
// an unknown session, continue anonymously. Each retrieved session is
// touched, extending its expiration by exp.
func Session(logger *zap.Logger, manager ISessionManager, exp time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				sessionID := SessionFromRequest(r)
				if sessionID == "" {
					next.ServeHTTP(w, r)
					return
				}

				sess, err := manager.RetrieveSession(r.Context(), sessionID)
				if errors.Is(err, session.ErrSessionDNE) {
					next.ServeHTTP(w, r)
					return
				}
				if err != nil {
					ErrInternal(logger, w, err)
					return
				}

				if err := manager.TouchSession(r.Context(), sess.ID, exp); err != nil &&
					!errors.Is(err, session.ErrSessionDNE) {
					ErrInternal(logger, w, err)
					return
				}

				ctx := session.WithSession(r.Context(), sess)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}
