package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"interviewai/internal/archive"
	"interviewai/internal/auth"
	"interviewai/internal/cache"
	"interviewai/internal/config"
	"interviewai/internal/fallback"
	"interviewai/internal/generation"
	"interviewai/internal/keys"
	"interviewai/internal/llm"
	"interviewai/pkg/logging/logging"
)

// loadConfig reads configuration and installs the process logger.
func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logging.SetDefault(logger)
	return cfg, logger, nil
}

// openStore builds the configured cache backend wrapped with logging and
// metrics. The returned cleanup releases connections.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cache.LoggingStore, func(), error) {
	cleanup := func() {}

	var redisClient *redis.Client
	if cfg.Cache.Backend == cache.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
		})
		cleanup = func() { _ = redisClient.Close() }
	}

	store, err := cache.NewStore(cache.Config{
		Backend:    cfg.Cache.Backend,
		FilePath:   cfg.Cache.Path,
		SQLitePath: cfg.Cache.SQLitePath,
		Prefix:     cfg.Cache.Prefix,
	}, redisClient)
	if err != nil {
		if store == nil {
			cleanup()
			return nil, func() {}, err
		}
		// unreadable cache file: start empty, the next write replaces it
		path := cfg.Cache.Path
		if fs, ok := store.(*cache.FileStore); ok {
			path = fs.Path()
		}
		logger.Warn("cache file unreadable, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
	}

	// Fail fast if Redis is misconfigured
	if rs, ok := store.(*cache.RedisStore); ok {
		if err := rs.Ping(ctx); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.Cache.RedisAddr))
	}

	if closer, ok := store.(io.Closer); ok {
		prev := cleanup
		cleanup = func() {
			_ = closer.Close()
			prev()
		}
	}

	return cache.NewLoggingStore(store, cfg.Cache.Backend), cleanup, nil
}

// newGenerationService wires the llm client, key rotator and model
// fallback chain behind the cache.
func newGenerationService(cfg *config.Config, store cache.Store, logger *zap.Logger) (*generation.Service, func(), error) {
	client, err := llm.NewClient(llm.Config{
		BaseURL:         cfg.LLM.BaseURL,
		UpstreamTimeout: cfg.LLM.Timeout,
		Headers: map[string]string{
			"HTTP-Referer": cfg.LLM.Referer,
			"X-Title":      cfg.LLM.Title,
		},
	}, logger)
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {}
	if closer, ok := client.(interface{ Close() error }); ok {
		cleanup = func() { _ = closer.Close() }
	}

	rotator := keys.NewRotator(cfg.LLM.APIKeys, cfg.LLM.KeyIndex)
	completer := &generation.LLMCompleter{
		Client:      client,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	orch := fallback.New(cfg.LLM.Models, rotator, completer, logger)

	logger.Info("generation configured",
		zap.String("llm_base_url", cfg.LLM.BaseURL),
		zap.Int("api_keys", rotator.Len()),
		zap.Strings("models", orch.Models()),
	)

	return generation.NewService(store, orch), cleanup, nil
}

func newAuthService(cfg *config.Config, logger *zap.Logger) (*auth.Service, error) {
	secret := cfg.Auth.Secret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("SECRET_KEY not set, sessions will not survive a restart")
	}

	passwords, err := auth.NewPasswords(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(secret, time.Duration(cfg.Auth.SessionHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	logger.Info("accounts configured", zap.Duration("session_ttl", tokens.TTL()))
	return auth.NewService(passwords, tokens), nil
}

// newArchiver returns nil when no bucket is configured.
func newArchiver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (archive.Archiver, error) {
	s3cfg := archive.S3Config{
		Bucket:      cfg.Archive.Bucket,
		EndpointURL: cfg.Archive.EndpointURL,
		Region:      cfg.Archive.Region,
		AccessKey:   cfg.Archive.AccessKey,
		SecretKey:   cfg.Archive.SecretKey,
	}
	if !s3cfg.Enabled() {
		return nil, nil
	}

	a, err := archive.NewS3Archiver(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("upload archive enabled",
		zap.String("bucket", s3cfg.Bucket),
		zap.String("endpoint", s3cfg.EndpointURL),
	)
	return a, nil
}
