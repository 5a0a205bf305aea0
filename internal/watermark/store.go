package watermark

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Store persists the reconciliation watermark to a file. The file
// survives restarts so a redeploy never re-syncs the whole catalog;
// when it is absent the watermark is initialized a configurable
// backfill window into the past and written immediately.
type Store struct {
	path     string
	backfill time.Duration
}

func NewStore(path string, backfill time.Duration) *Store {
	return &Store{path: path, backfill: backfill}
}

// Load reads the stored watermark, initializing it when missing.
func (s *Store) Load() (time.Time, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		initial := time.Now().UTC().Add(-s.backfill)
		if err := s.Save(initial); err != nil {
			return time.Time{}, err
		}
		return initial, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark %s: %w", s.path, err)
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark %s: %w", s.path, err)
	}
	return ts, nil
}

// Save atomically replaces the stored watermark.
func (s *Store) Save(ts time.Time) error {
	tmp := s.path + ".tmp"
	data := []byte(ts.UTC().Format(time.RFC3339) + "\n")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write watermark %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace watermark %s: %w", s.path, err)
	}
	return nil
}
