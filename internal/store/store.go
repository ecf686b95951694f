// Package store persists trainer state under string keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/blackjacktrainer/internal/game"
)

// StateKey is the key the trainer state is stored under
const StateKey = "blackjack-trainer"

var ErrNotFound = errors.New("key not found")

// Store is a small key-value store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// SaveState writes the machine state as JSON under StateKey
func SaveState(ctx context.Context, s Store, st game.PersistedState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.Put(ctx, StateKey, data)
}

// LoadState reads the machine state. It returns ErrNotFound when nothing
// was saved yet.
func LoadState(ctx context.Context, s Store) (game.PersistedState, error) {
	var st game.PersistedState
	data, err := s.Get(ctx, StateKey)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

// Open creates a store for driver "file", "sqlite" or "memory"
func Open(driver, path string) (Store, error) {
	switch driver {
	case "file":
		return NewFileStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
