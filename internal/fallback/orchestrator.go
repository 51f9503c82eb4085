// Package fallback tries an ordered list of models until one answers.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"interviewai/internal/metrics"
)

var (
	ErrNoModels      = errors.New("no models configured")
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Completer sends one prompt to one model with the given key.
type Completer interface {
	Complete(ctx context.Context, model, apiKey, prompt string) (string, error)
}

// KeySource hands out the key for the next call.
type KeySource interface {
	Next() (string, error)
}

// Attempt is the outcome of calling a single model.
type Attempt struct {
	Model    string
	Text     string
	Err      error
	Duration time.Duration
	// RetryAfter is the provider's back-off hint for a rate-limited attempt.
	RetryAfter time.Duration
}

func (a Attempt) OK() bool {
	return a.Err == nil
}

type Result struct {
	Text     string
	Model    string
	Attempts []Attempt
	// Err is nil on success, otherwise the error that ended the run.
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Messages renders one line per attempt in the order they ran.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		if a.OK() {
			out = append(out, "Used model: "+a.Model)
			continue
		}
		out = append(out, fmt.Sprintf("Model %s failed: %v", a.Model, a.Err))
	}
	return out
}

type Orchestrator struct {
	models    []string
	keys      KeySource
	completer Completer
	logger    *zap.Logger
}

func New(models []string, keys KeySource, completer Completer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleaned := make([]string, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	return &Orchestrator{
		models:    cleaned,
		keys:      keys,
		completer: completer,
		logger:    logger.Named("fallback"),
	}
}

func (o *Orchestrator) Models() []string {
	return append([]string(nil), o.models...)
}

// Run calls each model in order with a fresh key and stops at the first
// non-empty answer. A key pool error or a cancelled ctx ends the run early.
func (o *Orchestrator) Run(ctx context.Context, prompt string) Result {
	var res Result
	if len(o.models) == 0 {
		res.Err = ErrNoModels
		return res
	}

	for _, model := range o.models {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		key, err := o.keys.Next()
		if err != nil {
			o.logger.Error("no api key available", zap.Error(err))
			res.Err = err
			return res
		}

		start := time.Now()
		text, err := o.completer.Complete(ctx, model, key, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		attempt := Attempt{Model: model, Text: text, Err: err, Duration: time.Since(start)}
		limited := err != nil && IsRateLimited(err)
		if limited {
			attempt.RetryAfter = retryAfter(err)
		}
		res.Attempts = append(res.Attempts, attempt)

		if err == nil {
			metrics.ModelAttemptsTotal.WithLabelValues(model, "success").Inc()
			o.logger.Info("model answered",
				zap.String("model", model),
				zap.Int("attempt", len(res.Attempts)),
				zap.Duration("duration", attempt.Duration),
			)
			res.Text = text
			res.Model = model
			res.Err = nil
			return res
		}

		metrics.ModelAttemptsTotal.WithLabelValues(model, "failure").Inc()
		fields := []zap.Field{
			zap.String("model", model),
			zap.Error(err),
			zap.Duration("duration", attempt.Duration),
		}
		if limited {
			fields = append(fields, zap.Bool("rate_limited", true), zap.Duration("retry_after", attempt.RetryAfter))
		}
		o.logger.Warn("model failed, trying next", fields...)
		res.Err = err
	}

	return res
}
