package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"interviewai/internal/generation"
	"interviewai/pkg/logging/logging"
)

// Generator is satisfied by *generation.Service.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Response, error)
}

type QuestionsHandler struct {
	Generator Generator
}

func NewQuestionsHandler(g Generator) *QuestionsHandler {
	return &QuestionsHandler{Generator: g}
}

// Limits only stop runaway payloads from reaching the prompt; the body
// size cap still applies on top.
type generateRequest struct {
	Resume string     `json:"resume"`
	Role   string     `json:"role" validate:"max=500"`
	Skills string     `json:"skills" validate:"max=10000"`
	Years  flexString `json:"years" validate:"max=20"`
}

// flexString accepts a JSON string, number or null. Forms send years as a
// string, scripts tend to send a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("years must be a string or number")
		}
		*f = flexString(n.String())
	}
	return nil
}

// Generate handles POST /generate_questions.
func (h *QuestionsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	resp, err := h.Generator.Generate(ctx, generation.Request{
		Resume: req.Resume,
		Role:   req.Role,
		Skills: req.Skills,
		Years:  string(req.Years),
	})
	if err != nil {
		var vErr *generation.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		logger.Error("generate questions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("questions generated",
		zap.Bool("cached", resp.Cached),
		zap.String("model", resp.Model),
		zap.Int("questions", len(resp.Questions)),
		zap.Duration("total_latency", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, resp)
}
