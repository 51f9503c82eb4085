package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interviewai/internal/handlers"
	"interviewai/internal/httpserver"
	"interviewai/internal/metrics"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*configPath)
		},
	}
}

func run(configPath string) error {
	// ----- Config + logger -----
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}

	// ----- Metrics -----
	metrics.Register()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Duration("request_timeout", cfg.RequestTimeout),
	)

	ctx := context.Background()

	// ----- Cache -----
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("cache setup failed", zap.Error(err))
		return err
	}
	defer closeStore()

	// ----- Generation -----
	svc, closeLLM, err := newGenerationService(cfg, store, logger)
	if err != nil {
		return err
	}
	defer closeLLM()

	// ----- Accounts -----
	authSvc, err := newAuthService(cfg, logger)
	if err != nil {
		return err
	}

	// ----- Upload archive (optional) -----
	archiver, err := newArchiver(ctx, cfg, logger)
	if err != nil {
		logger.Error("archive setup failed", zap.Error(err))
		return err
	}

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, authSvc.Tokens(), httpserver.Handlers{
		Questions: handlers.NewQuestionsHandler(svc),
		Upload:    handlers.NewUploadHandler(cfg.Upload.MaxBytes, cfg.Upload.MaxResumeLength, archiver),
		Auth:      handlers.NewAuthHandler(authSvc, cfg.Env == "production"),
	}, httpserver.Options{
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return err
	case <-stop:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
