// Package keys hands out upstream API credentials in round-robin order.
package keys

import (
	"strings"
	"sync"

	"interviewai/internal/metrics"
)

// ConfigurationError reports a missing or unusable credential setup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ErrNoKeys is returned by Next when the pool is empty.
var ErrNoKeys = &ConfigurationError{Reason: "no API keys configured, set API_KEYS"}

// Rotator cycles blindly through a fixed pool. Every call to Next advances the
// cursor by one whether or not the caller's request later succeeds.
type Rotator struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewRotator drops blank entries and starts the cursor at start (mod pool size).
func NewRotator(keys []string, start int) *Rotator {
	pool := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			pool = append(pool, k)
		}
	}

	r := &Rotator{keys: pool}
	if len(pool) > 0 {
		r.cursor = ((start % len(pool)) + len(pool)) % len(pool)
	}
	return r
}

// Next returns the key under the cursor and advances it.
func (r *Rotator) Next() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return "", ErrNoKeys
	}

	key := r.keys[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.keys)
	metrics.KeyRotationsTotal.Inc()
	return key, nil
}

// Cursor reports the index the next call will use.
func (r *Rotator) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Len is the pool size.
func (r *Rotator) Len() int {
	return len(r.keys)
}
