// Package generation turns a resume into interview questions, consulting the
// cache before falling back across models.
package generation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"interviewai/internal/cache"
	"interviewai/internal/fallback"
	"interviewai/internal/questions"
	"interviewai/pkg/logging/logging"
)

const MsgNoResume = "No resume text provided."

type Request struct {
	Resume string
	Role   string
	Skills string
	Years  string
}

type Response struct {
	Questions        []string `json:"questions"`
	FallbackMessages []string `json:"fallback_messages"`
	Model            string   `json:"model,omitempty"`
	Cached           bool     `json:"cached"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Runner is satisfied by *fallback.Orchestrator.
type Runner interface {
	Run(ctx context.Context, prompt string) fallback.Result
}

type Service struct {
	store  cache.Store
	runner Runner
}

func NewService(store cache.Store, runner Runner) *Service {
	return &Service{store: store, runner: runner}
}

// Generate returns cached questions when the same inputs were seen before,
// otherwise asks the models in order. Model failures are folded into the
// question list and never cached.
func (s *Service) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Resume) == "" {
		return Response{}, &ValidationError{Field: "resume", Message: MsgNoResume}
	}

	log := logging.L(ctx)
	key := cache.Fingerprint(req.Resume, req.Role, req.Skills, req.Years)

	cached, hit, err := s.store.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed, generating fresh", zap.Error(err))
	}
	if hit {
		return Response{
			Questions:        cached,
			FallbackMessages: []string{},
			Cached:           true,
		}, nil
	}

	res := s.runner.Run(ctx, BuildPrompt(req))
	if !res.OK() {
		log.Warn("question generation failed",
			zap.Int("attempts", len(res.Attempts)),
			zap.Error(res.Err),
		)
		return Response{
			Questions:        []string{fallback.FailureMessage(res.Err)},
			FallbackMessages: res.Messages(),
		}, nil
	}

	qs := questions.Parse(res.Text)
	if err := s.store.Put(ctx, key, qs); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}

	return Response{
		Questions:        qs,
		FallbackMessages: res.Messages(),
		Model:            res.Model,
	}, nil
}
