package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"veillellm/internal/domain"
	"veillellm/internal/ports"
)

// maxEntries bounds the persisted history; older runs are trimmed away.
const maxEntries = 50

// FileStore keeps the run history as a bounded JSON list in a flat
// file. Appends rewrite the file atomically (temp file + rename) so
// concurrent readers never observe a torn write.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.HistoryStore = (*FileStore)(nil)

// NewFileStore wires the history file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append adds a terminal run record and trims to the most recent
// maxEntries, oldest first on disk.
func (s *FileStore) Append(_ context.Context, run domain.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return err
	}

	runs = append(runs, run)
	if len(runs) > maxEntries {
		runs = runs[len(runs)-maxEntries:]
	}

	return s.write(runs)
}

// List returns up to limit entries, most recent first.
func (s *FileStore) List(_ context.Context, limit int) ([]domain.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(runs) {
		limit = len(runs)
	}

	out := make([]domain.PipelineRun, 0, limit)
	for i := len(runs) - 1; i >= len(runs)-limit; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}

// Last returns the most recent run, or nil when no history exists.
func (s *FileStore) Last(ctx context.Context) (*domain.PipelineRun, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (s *FileStore) load() ([]domain.PipelineRun, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var runs []domain.PipelineRun
	if err := json.Unmarshal(raw, &runs); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	return runs, nil
}

func (s *FileStore) write(runs []domain.PipelineRun) error {
	raw, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
