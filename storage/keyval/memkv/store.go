// Package memkv holds collections in process memory. It backs tests and the
// ephemeral mode (dataDir=""), where state intentionally dies with the
// process.
package memkv

import (
	"context"
	"sync"

	"github.com/mustangstride/stride/core"
)

type Store struct {
	mu    sync.RWMutex
	table map[string][]byte
}

var _ core.KeyValueStore = (*Store)(nil)

func Open() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.table[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	val := make([]byte, len(value))
	copy(val, value)

	s.mu.Lock()
	s.table[key] = val
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error { return nil }
