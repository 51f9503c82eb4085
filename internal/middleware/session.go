package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"interviewai/internal/auth"
	"interviewai/pkg/logging/logging"
)

const SessionCookie = "session"

type sessionKey struct{}

// Session resolves the session cookie, if any, into claims on the context.
// Requests without a valid session pass through anonymously.
func Session(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(c.Value)
			if err != nil {
				logging.L(r.Context()).Debug("ignoring invalid session", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, claims)
			ctx = logging.WithFields(ctx, zap.String("user", claims.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}
