package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

var _ StateStore = (*fileStore)(nil) // ensure fileStore implements StateStore.

// StateStore loads and persists the full library state. Save rewrites
// the backing medium completely; there is no partial or batched write.
type StateStore interface {
	Load() (*LibraryState, error)
	Save(state *LibraryState) error
}

// fileStore keeps the state in one human-readable JSON file.
type fileStore struct {
	logger *zap.Logger
	path   string
}

// NewFileStore provides an instance of the flat file state store.
func NewFileStore(logger *zap.Logger, config *StoreConfig) StateStore {
	return &fileStore{logger: logger, path: config.FilePath}
}

// Load reads and parses the backing file. A missing file or an empty
// one initializes an empty state which is written out immediately. A
// file that fails to parse degrades to an empty state without touching
// the file, so an operator can still inspect the broken content.
func (fs *fileStore) Load() (*LibraryState, error) {
	raw, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		state := NewLibraryState()
		if err = fs.Save(state); err != nil {
			return nil, err
		}
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to read %s: %w", fs.path, err)
	}

	if len(raw) == 0 {
		state := NewLibraryState()
		if err = fs.Save(state); err != nil {
			return nil, err
		}
		return state, nil
	}

	state := NewLibraryState()
	if err = json.Unmarshal(raw, state); err != nil {
		fs.logger.Warn("store: unreadable records file. starting from an empty state",
			zap.String("store.path", fs.path),
			zap.Error(err),
		)
		return NewLibraryState(), nil
	}
	NormalizeState(state)
	return state, nil
}

// Save serializes the full state and overwrites the backing file.
func (fs *fileStore) Save(state *LibraryState) error {
	raw, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return fmt.Errorf("store: failed to serialize state: %w", err)
	}
	if err = os.WriteFile(fs.path, raw, 0o644); err != nil {
		return fmt.Errorf("store: failed to write %s: %w", fs.path, err)
	}
	return nil
}

// NormalizeState folds the legacy misspelled borrowed key into the
// current one and makes sure every collection and borrowed list is
// non-nil. Running it twice yields the same result as running it once.
func NormalizeState(state *LibraryState) {
	if state.Books == nil {
		state.Books = []Book{}
	}
	if state.Members == nil {
		state.Members = []Member{}
	}
	for i := range state.Members {
		m := &state.Members[i]
		if m.Borrowed == nil && m.LegacyBorrowed != nil {
			m.Borrowed = m.LegacyBorrowed
		}
		m.LegacyBorrowed = nil
		if m.Borrowed == nil {
			m.Borrowed = []BorrowRecord{}
		}
	}
}
