package fallback

import (
	"errors"
	"strings"
	"time"
)

const RateLimitMessage = "Daily free request limit reached. Please try again tomorrow or add credits."

type rateLimited interface {
	RateLimited() bool
}

type retryDelayer interface {
	RetryDelay() time.Duration
}

// retryAfter returns the back-off hint carried by err, if any.
func retryAfter(err error) time.Duration {
	var rd retryDelayer
	if errors.As(err, &rd) {
		return rd.RetryDelay()
	}
	return 0
}

// IsRateLimited matches typed upstream errors first, then falls back to the
// error text for errors that lost their type on the way up.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rl rateLimited
	if errors.As(err, &rl) && rl.RateLimited() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

// FailureMessage is the single user-facing line shown when every model failed.
func FailureMessage(err error) string {
	if IsRateLimited(err) {
		return RateLimitMessage
	}
	if err == nil {
		return "Error generating questions: unknown error"
	}
	return "Error generating questions: " + err.Error()
}
