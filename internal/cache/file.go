package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilePath is where the file store persists when no path is configured.
const DefaultFilePath = "resume_cache.json"

// FileStore keeps every entry in memory and rewrites one JSON object
// {key: [questions...]} after each Put. There is no expiry and no eviction.
// Writers in other processes are not coordinated: the last flush wins.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	items map[string][]string

	// serializes flushes so a stale snapshot never overwrites a newer one
	writeMu sync.Mutex
}

// NewFileStore creates a store backed by path and loads it. A missing or empty
// file yields an empty store. On a corrupt file the store is still returned,
// empty, together with the decode error so the caller can log it.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultFilePath
	}

	c := &FileStore{
		path:  path,
		items: make(map[string][]string),
	}
	if err := c.Load(); err != nil {
		return c, err
	}
	return c, nil
}

// Path is the file the store persists to.
func (c *FileStore) Path() string {
	return c.path
}

// Load replaces the in-memory mapping with the file contents.
func (c *FileStore) Load() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.mu.Lock()
		c.items = make(map[string][]string)
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache file: %w", err)
	}

	items := make(map[string][]string)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode cache file %s: %w", c.path, err)
		}
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Get retrieves a question list.
func (c *FileStore) Get(_ context.Context, key string) ([]string, bool, error) {
	c.mu.RLock()
	q, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	return cloneQuestions(q), true, nil
}

// Put stores a question list and flushes the whole mapping to disk.
func (c *FileStore) Put(ctx context.Context, key string, questions []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	c.mu.Lock()
	c.items[key] = cloneQuestions(questions)
	c.mu.Unlock()

	return c.Flush()
}

// Flush writes the current mapping to disk.
func (c *FileStore) Flush() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.RLock()
	data, err := json.Marshal(c.items)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *FileStore) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items), nil
}

// Clear removes every entry and flushes the empty mapping.
func (c *FileStore) Clear(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string][]string)
	c.mu.Unlock()
	return c.Flush()
}
