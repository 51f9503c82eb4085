package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"interviewai/internal/auth"
	"interviewai/internal/cache"
	"interviewai/internal/fallback"
	"interviewai/internal/generation"
	"interviewai/internal/handlers"
	"interviewai/internal/keys"
)

type scriptedCompleter struct {
	calls atomic.Int32
}

func (s *scriptedCompleter) Complete(_ context.Context, model, _, _ string) (string, error) {
	s.calls.Add(1)
	if model == "broken" {
		return "", context.DeadlineExceeded
	}
	return "1. What is polymorphism\n2. Describe your cloud experience.\n- ok", nil
}

func newTestServer(t *testing.T) (*httptest.Server, *scriptedCompleter) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store, err := cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatal(err)
	}
	completer := &scriptedCompleter{}
	orch := fallback.New([]string{"broken", "good"}, keys.NewRotator([]string{"k1", "k2"}, 0), completer, logger)
	svc := generation.NewService(cache.NewLoggingStore(store, cache.BackendFile), orch)

	pw, err := auth.NewPasswords(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := auth.NewTokens("router-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	SetupRouter(r, logger, tokens, Handlers{
		Questions: handlers.NewQuestionsHandler(svc),
		Upload:    handlers.NewUploadHandler(4<<20, 1500, nil),
		Auth:      handlers.NewAuthHandler(auth.NewService(pw, tokens), false),
	}, Options{RequestTimeout: 5 * time.Second})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, completer
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGenerateQuestionsEndToEnd(t *testing.T) {
	srv, completer := newTestServer(t)
	body := `{"resume":"Cloud engineer","role":"SRE","skills":"AWS","years":"4"}`

	post := func() map[string]interface{} {
		resp, err := http.Post(srv.URL+"/generate_questions", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		return out
	}

	first := post()
	qs, _ := first["questions"].([]interface{})
	if len(qs) != 2 || qs[0] != "What is polymorphism?" || qs[1] != "Describe your cloud experience?" {
		t.Fatalf("unexpected questions: %v", first["questions"])
	}
	msgs, _ := first["fallback_messages"].([]interface{})
	if len(msgs) != 2 || msgs[1] != "Used model: good" {
		t.Fatalf("unexpected fallback messages: %v", msgs)
	}

	second := post()
	if second["cached"] != true {
		t.Fatalf("second identical request should be cached: %v", second)
	}
	if completer.calls.Load() != 2 {
		t.Fatalf("expected 2 upstream calls in total, got %d", completer.calls.Load())
	}
}

func TestGenerateQuestionsEmptyResumeRoute(t *testing.T) {
	srv, completer := newTestServer(t)

	resp, err := http.Post(srv.URL+"/generate_questions", "application/json", strings.NewReader(`{"resume":"   "}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if completer.calls.Load() != 0 {
		t.Fatalf("no upstream call expected")
	}
}

func TestSessionRouteAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/session")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out struct {
		UserLoggedIn bool   `json:"user_logged_in"`
		UserName     string `json:"user_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.UserLoggedIn || out.UserName != "" {
		t.Fatalf("expected anonymous session, got %#v", out)
	}
}

func TestMetricsRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
