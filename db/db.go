package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"medipal/models"
)

// ErrStoreUnavailable marks any failure to read, parse or write the
// backing file. Requests fail on it; nothing retries.
var ErrStoreUnavailable = errors.New("store unavailable")

// Store persists the whole document as a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and parses the backing file.
func (s *Store) Load() (*models.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, s.path, err)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return doc, nil
}

// Save writes the document back as pretty-printed JSON with a trailing
// newline.
func (s *Store) Save(doc *models.Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStoreUnavailable, err)
	}
	raw = append(raw, '\n')

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return nil
}

// Update loads the document, applies fn and saves the result. The mutex is
// held across the whole cycle so concurrent callers cannot interleave
// their reads and writes and drop each other's changes. Nothing is
// persisted when fn returns an error.
func (s *Store) Update(fn func(doc *models.Document) error) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
