package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"interviewai/internal/auth"
	"interviewai/internal/handlers"
	"interviewai/internal/metrics"
	"interviewai/internal/middleware"
)

// multipart framing on top of the file itself
const uploadOverhead = 512 * 1024

type Options struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

type Handlers struct {
	Questions *handlers.QuestionsHandler
	Upload    *handlers.UploadHandler
	Auth      *handlers.AuthHandler
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, tokens *auth.Tokens, h Handlers, opts Options) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 3 * time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 4 * 1024 * 1024
	}

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.MaxBodySize(opts.MaxUploadBytes + uploadOverhead))
	r.Use(middleware.Session(tokens))

	r.Group(func(r chi.Router) {
		// generation walks the whole model chain, so it gets the long budget
		r.Use(middleware.Timeout(opts.RequestTimeout))

		r.Post("/upload", h.Upload.Upload)
		r.Post("/generate_questions", h.Questions.Generate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))

		r.Post("/signup", h.Auth.SignUp)
		r.Post("/signin", h.Auth.SignIn)
		r.Get("/logout", h.Auth.Logout)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/session", h.Auth.Session)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
