// Package store persists suggestion batches so a later `run <id>` resolves to
// the exact command text that was shown to the operator.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// FileStore keeps the latest suggestion batch (plus a bounded tail of older
// ones, reachable only by explicit handle) in a single JSON file. Publishing
// a new batch replaces the file atomically via rename under an advisory lock,
// so a concurrent resolve in another process never observes a half-written
// batch. Whichever write completes last wins; acceptable for a single
// operator tool.
type FileStore struct {
	path        string
	ttl         time.Duration
	keepBatches int
}

type storeFile struct {
	Batches []domain.Batch `json:"batches"`
}

// Option tweaks FileStore construction.
type Option func(*FileStore)

// WithTTL overrides the batch validity window.
func WithTTL(ttl time.Duration) Option {
	return func(s *FileStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeepBatches overrides how many superseded batches stay resolvable by
// explicit handle.
func WithKeepBatches(n int) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.keepBatches = n
		}
	}
}

// NewFileStore returns a store rooted at dir (default ~/.kaalsec).
func NewFileStore(dir string, opts ...Option) *FileStore {
	if dir == "" {
		dir = filepath.Join(userHome(), ".kaalsec")
	}
	s := &FileStore{
		path:        filepath.Join(dir, "suggestions.json"),
		ttl:         time.Hour,
		keepBatches: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutBatch implements ports.SuggestionRepository. IDs are reassigned densely
// in the order given; an empty input is a valid batch with zero valid IDs.
func (s *FileStore) PutBatch(items []domain.Suggestion, now time.Time) (domain.Batch, error) {
	batch := domain.Batch{
		Handle:    uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Items:     make([]domain.Suggestion, len(items)),
	}
	for i, item := range items {
		item.ID = i + 1
		batch.Items[i] = item
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.Batch{}, fmt.Errorf("suggestion store: %w", err)
	}

	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return domain.Batch{}, fmt.Errorf("suggestion store lock: %w", err)
	}
	defer lock.Unlock()

	current, err := s.read()
	if err != nil {
		return domain.Batch{}, err
	}

	// latest first; older batches age out past keepBatches
	current.Batches = append([]domain.Batch{batch}, current.Batches...)
	if len(current.Batches) > s.keepBatches {
		current.Batches = current.Batches[:s.keepBatches]
	}

	if err := s.replace(current); err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

// Resolve implements ports.SuggestionRepository.
func (s *FileStore) Resolve(id int, selector string, now time.Time) (domain.Suggestion, error) {
	current, err := s.read()
	if err != nil {
		return domain.Suggestion{}, err
	}
	if len(current.Batches) == 0 {
		return domain.Suggestion{}, fmt.Errorf("no suggestion batch: %w", domain.ErrNotFound)
	}

	batch := current.Batches[0]
	if selector != "" {
		found := false
		for _, candidate := range current.Batches {
			if candidate.Handle == selector {
				batch = candidate
				found = true
				break
			}
		}
		if !found {
			return domain.Suggestion{}, fmt.Errorf("batch %s: %w", selector, domain.ErrNotFound)
		}
	}

	if batch.Expired(now) {
		return domain.Suggestion{}, fmt.Errorf("batch created %s: %w",
			batch.CreatedAt.Format(time.RFC3339), domain.ErrExpired)
	}
	suggestion, ok := batch.Lookup(id)
	if !ok {
		return domain.Suggestion{}, fmt.Errorf("suggestion %d (batch holds %d): %w",
			id, len(batch.Items), domain.ErrNotFound)
	}
	return suggestion, nil
}

// Latest implements ports.SuggestionRepository.
func (s *FileStore) Latest() (domain.Batch, bool, error) {
	current, err := s.read()
	if err != nil {
		return domain.Batch{}, false, err
	}
	if len(current.Batches) == 0 {
		return domain.Batch{}, false, nil
	}
	return current.Batches[0], true, nil
}

func (s *FileStore) read() (storeFile, error) {
	var file storeFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file, nil
		}
		return file, fmt.Errorf("suggestion store read: %w", err)
	}
	if err := json.Unmarshal(data, &file); err != nil {
		// a corrupt cache is treated as empty rather than fatal
		return storeFile{}, nil
	}
	return file, nil
}

func (s *FileStore) replace(file storeFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".suggestions-*.json")
	if err != nil {
		return fmt.Errorf("suggestion store write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("suggestion store write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("suggestion store write: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("suggestion store publish: %w", err)
	}
	return nil
}

func (s *FileStore) lockPath() string {
	return s.path + ".lock"
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.SuggestionRepository = (*FileStore)(nil)
