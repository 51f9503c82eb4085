package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"interviewai/pkg/logging/logging"
)

// Recoverer turns a handler panic into a logged 500 with a JSON error body.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logging.L(r.Context()).Error("panic recovered",
					zap.Any("error", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal server error."}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
