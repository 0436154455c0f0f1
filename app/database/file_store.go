package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/lysyi3m/kent-tracker/app/feed"
)

var ErrLocked = errors.New("another run holds the state lock")

var _ StateRepository = (*FileStore)(nil)

// FileStore keeps the state and feed as JSON documents on disk.
type FileStore struct {
	statePath   string
	feedPath    string
	lock        *flock.Flock
	lockTimeout time.Duration
}

func NewFileStore(statePath, feedPath string, lockTimeout time.Duration) *FileStore {
	return &FileStore{
		statePath:   statePath,
		feedPath:    feedPath,
		lock:        flock.New(statePath + ".lock"),
		lockTimeout: lockTimeout,
	}
}

// Lock takes the exclusive run lock, waiting up to the configured timeout.
// A zero timeout tries once.
func (s *FileStore) Lock(ctx context.Context) (func(), error) {
	if dir := filepath.Dir(s.statePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	var ok bool
	var err error
	if s.lockTimeout > 0 {
		lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
		ok, err = s.lock.TryLockContext(lockCtx, 250*time.Millisecond)
	} else {
		// No wait: a single attempt.
		ok, err = s.lock.TryLock()
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			slog.Warn("Failed to release state lock", "path", s.lock.Path(), "error", err)
		}
	}, nil
}

func (s *FileStore) LoadState() State {
	var state State

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("State file unreadable, starting empty", "path", s.statePath, "error", err)
		}
		return State{SeenURLs: []string{}}
	}

	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("State file malformed, starting empty", "path", s.statePath, "error", err)
		return State{SeenURLs: []string{}}
	}

	if state.SeenURLs == nil {
		state.SeenURLs = []string{}
	}
	return state
}

func (s *FileStore) SaveState(state State) error {
	if state.SeenURLs == nil {
		state.SeenURLs = []string{}
	}
	return writeJSON(s.statePath, state)
}

// LoadFeed reads the persisted feed. Entries that fail to decode or carry
// no URL are dropped individually.
func (s *FileStore) LoadFeed() []feed.FeedItem {
	data, err := os.ReadFile(s.feedPath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Feed file unreadable, starting empty", "path", s.feedPath, "error", err)
		}
		return []feed.FeedItem{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("Feed file malformed, starting empty", "path", s.feedPath, "error", err)
		return []feed.FeedItem{}
	}

	items := make([]feed.FeedItem, 0, len(raw))
	for i, entry := range raw {
		var item feed.FeedItem
		if err := json.Unmarshal(entry, &item); err != nil {
			slog.Warn("Skipping malformed feed entry", "index", i, "error", err)
			continue
		}
		if item.URL == "" {
			item.URL = item.ID
		}
		if item.URL == "" {
			continue
		}
		items = append(items, item)
	}

	return items
}

func (s *FileStore) SaveFeed(items []feed.FeedItem) error {
	if items == nil {
		items = []feed.FeedItem{}
	}
	return writeJSON(s.feedPath, items)
}

// writeJSON replaces path atomically via a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
