package cache

import (
	"context"
	"errors"
	"time"

	"interviewai/internal/metrics"
	"interviewai/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with logging + metrics.
type LoggingStore struct {
	inner   Store
	backend string
}

// NewLoggingStore returns a store that logs and records metrics.
func NewLoggingStore(inner Store, backend string) *LoggingStore {
	if backend == "" {
		backend = BackendFile
	}
	return &LoggingStore{inner: inner, backend: backend}
}

func (c *LoggingStore) Get(ctx context.Context, key string) ([]string, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}
	metrics.CacheLookupsTotal.WithLabelValues(result).Inc()

	fields := []zap.Field{
		zap.String("cache_backend", c.backend),
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("question_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Info("question_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingStore) Put(ctx context.Context, key string, questions []string) error {
	start := time.Now()
	err := c.inner.Put(ctx, key, questions)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	fields := []zap.Field{
		zap.String("cache_backend", c.backend),
		zap.String("cache_key", key),
		zap.Int("question_count", len(questions)),
		zap.Float64("latency_ms", latencyMs),
	}

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("question_cache_put", append(fields, zap.Error(err))...)
	} else {
		logger.Info("question_cache_put", fields...)
	}

	return err
}

var errNoAdmin = errors.New("cache backend does not support maintenance")

// Len delegates to the wrapped store when it supports Admin.
func (c *LoggingStore) Len(ctx context.Context) (int, error) {
	a, ok := c.inner.(Admin)
	if !ok {
		return 0, errNoAdmin
	}
	return a.Len(ctx)
}

// Clear delegates to the wrapped store when it supports Admin.
func (c *LoggingStore) Clear(ctx context.Context) error {
	a, ok := c.inner.(Admin)
	if !ok {
		return errNoAdmin
	}
	logging.L(ctx).Info("question_cache_clear", zap.String("cache_backend", c.backend))
	return a.Clear(ctx)
}
