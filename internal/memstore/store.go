// Package memstore is an in-memory database.Store used for demos and tests.
package memstore

import (
	"context"
	"sync"

	"github.com/rotiroti/backoffice/internal/database"
)

// Store keeps every table in maps. Units of work run one at a time against a
// private copy that replaces the committed tables only when they succeed, so
// readers never observe a partial write.
type Store struct {
	mu   sync.RWMutex // guards data
	txMu sync.Mutex   // serializes writers
	data *tables
}

var _ database.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newTables()}
}

func (s *Store) ExecTx(ctx context.Context, fn func(database.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func read[T any](s *Store, fn func(*tables) (T, error)) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write applies a single statement directly to the committed tables. Every
// tables method validates before mutating, so no copy is needed.
func write[T any](s *Store, fn func(*tables) (T, error)) (T, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}
