package cache

import (
	"context"
)

// Store maps a request fingerprint to a previously generated question list.
// Implemented by the JSON file store (default), Redis and SQLite.
type Store interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Put(ctx context.Context, key string, questions []string) error
}

// Admin is the maintenance surface used by the CLI.
type Admin interface {
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

func cloneQuestions(q []string) []string {
	if q == nil {
		return nil
	}
	out := make([]string, len(q))
	copy(out, q)
	return out
}
