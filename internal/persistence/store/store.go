package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"stockbar/pkg/fx"
	"stockbar/pkg/portfolio"
	"stockbar/pkg/refresh"
)

// State is the durable snapshot of everything worth surviving a restart:
// last known quotes, coordinator bookkeeping and the exchange-rate table.
type State struct {
	SavedAt     time.Time                     `msgpack:"saved_at"`
	Snapshots   map[string]portfolio.Snapshot `msgpack:"snapshots"`
	Coordinator []refresh.SymbolState         `msgpack:"coordinator"`
	Rates       *fx.Table                     `msgpack:"rates"`
}

// Store reads and writes the state file. Writes go through a temp file and
// rename so a crash mid-write never corrupts the previous state.
type Store struct {
	path string
}

// New returns a store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Save serializes the state to disk atomically.
func (s *Store) Save(state *State) error {
	if s == nil || s.path == "" || state == nil {
		return nil
	}
	state.SavedAt = time.Now().UTC()

	data, err := msgpack.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: replace state: %w", err)
	}
	return nil
}

// Load reads the state file. A missing file is not an error; it simply
// means a cold start, signalled by a nil state.
func (s *Store) Load() (*State, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	var state State
	if err := msgpack.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	return &state, nil
}
