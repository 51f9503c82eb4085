package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// APIError is a failed upstream call that produced an HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llmclient: upstream %d: %s (%s)", e.StatusCode, e.Message, e.Type)
	}
	return fmt.Sprintf("llmclient: upstream %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the provider refused the call for quota or
// rate reasons. OpenRouter's free tier answers 429 once the daily quota is
// spent, sometimes with only a message to go on.
func (e *APIError) RateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "rate limit")
}

// RetryDelay is the provider's Retry-After hint, zero when it sent none.
func (e *APIError) RetryDelay() time.Duration {
	return e.RetryAfter
}

// parseRetryAfter extracts the retry delay from a Retry-After header.
// Returns 0 if header is missing or invalid.
//
// Retry-After can be:
// - Number of seconds: "120"
// - HTTP date: "Wed, 21 Oct 2015 07:28:00 GMT"
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	const maxRetryAfter = 5 * time.Minute

	if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil {
		if seconds <= 0 {
			return 0
		}
		d := time.Duration(seconds) * time.Second
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		d := time.Until(t)
		if d <= 0 {
			return 0
		}
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}

	return 0
}
