package repository

import (
	"context"
	"sync"
	"time"

	"github.com/vidarx/recovery/internal/models"
)

// MemoryStore is an in-process TransactionStore used by unit tests and for
// running the service without a database. Writes are serialized per store,
// which is stricter than the per-row guarantee Postgres gives.
type MemoryStore struct {
	mu   sync.RWMutex
	txns map[string]*models.Transaction
}

// NewMemoryStore creates an empty in-memory TransactionStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{txns: make(map[string]*models.Transaction)}
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.txns[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (s *MemoryStore) FindDuplicateCandidates(_ context.Context, customerID string,
	amountLow, amountHigh float64, timeLow, timeHigh time.Time,
	excludeID string) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*models.Transaction
	for _, txn := range s.txns {
		if txn.ID == excludeID {
			continue
		}
		if txn.CustomerID == nil || *txn.CustomerID != customerID {
			continue
		}
		if txn.Amount < amountLow || txn.Amount > amountHigh {
			continue
		}
		// Window bounds are inclusive on both ends
		if txn.CreatedAt.Before(timeLow) || txn.CreatedAt.After(timeHigh) {
			continue
		}
		cp := *txn
		candidates = append(candidates, &cp)
	}

	return candidates, nil
}

func (s *MemoryStore) PersistRecovery(_ context.Context, id string,
	state models.CanonicalState, recoveredAt time.Time, processorTimestamp *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.txns[id]
	if !ok {
		return models.ErrNotFound
	}
	txn.RecoveredState = &state
	txn.RecoveredAt = &recoveredAt
	txn.ProcessorTimestamp = processorTimestamp
	return nil
}

func (s *MemoryStore) Create(_ context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *txn
	s.txns[txn.ID] = &cp
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txns), nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

var _ TransactionStore = (*MemoryStore)(nil)
