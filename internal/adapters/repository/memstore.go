package repository

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/pkg/metrics"
)

// MemoryStore is an in-memory Store guarded by a RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	ledgers  map[string][]model.Transaction
	txCount  int
	version  uint64
	idSource io.Reader
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{ledgers: make(map[string][]model.Transaction)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser registers userID with a copy of txs.
func (s *MemoryStore) AddUser(_ context.Context, userID string, txs []model.Transaction) error {
	for _, tx := range txs {
		if err := validate(tx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[userID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, userID)
	}
	ledger := make([]model.Transaction, len(txs))
	copy(ledger, txs)
	for i := range ledger {
		if ledger[i].ID == "" {
			id, err := s.newID()
			if err != nil {
				return err
			}
			ledger[i].ID = id
		}
	}
	s.order = append(s.order, userID)
	s.ledgers[userID] = ledger
	s.txCount += len(ledger)
	s.version++
	metrics.UpdateLedgerSize(len(s.order), s.txCount)
	return nil
}

// Append adds tx to the user's ledger.
func (s *MemoryStore) Append(_ context.Context, userID string, tx model.Transaction) (model.Transaction, error) {
	if err := validate(tx); err != nil {
		return model.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ledger, ok := s.ledgers[userID]
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	if tx.ID == "" {
		id, err := s.newID()
		if err != nil {
			return model.Transaction{}, err
		}
		tx.ID = id
	}
	s.ledgers[userID] = append(ledger, tx)
	s.txCount++
	s.version++
	metrics.UpdateLedgerSize(len(s.order), s.txCount)
	return tx, nil
}

// Transactions returns a copy of the user's ledger.
func (s *MemoryStore) Transactions(_ context.Context, userID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledger, ok := s.ledgers[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return append([]model.Transaction(nil), ledger...), nil
}

// Users returns user ids in insertion order.
func (s *MemoryStore) Users(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Population copies every ledger under one read lock.
func (s *MemoryStore) Population(_ context.Context) ([]string, [][]model.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := append([]string(nil), s.order...)
	ledgers := make([][]model.Transaction, len(ids))
	for i, id := range ids {
		ledgers[i] = append([]model.Transaction(nil), s.ledgers[id]...)
	}
	return ids, ledgers, s.version
}

// Version returns the write counter.
func (s *MemoryStore) Version(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Count returns the number of users and transactions held.
func (s *MemoryStore) Count(_ context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), s.txCount
}

// newID must be called with the write lock held.
func (s *MemoryStore) newID() (string, error) {
	if s.idSource == nil {
		return uuid.NewString(), nil
	}
	id, err := uuid.NewRandomFromReader(s.idSource)
	if err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}
	return id.String(), nil
}

func validate(tx model.Transaction) error {
	if tx.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidTransaction, tx.Amount)
	}
	if !tx.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTransaction, tx.Category)
	}
	return nil
}
