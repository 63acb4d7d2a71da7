// Package memory provides the default in-memory HistoryStore. The full
// history of a run lives in one map that only grows — the documented
// scaling limit of the design. Runs whose history exceeds RAM should
// use the redis or postgres backend instead.
package memory

import (
	"context"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/pkg/apperror"
)

// HistoryStore implements ports.HistoryStore with a map.
type HistoryStore struct {
	records map[domain.TransactionID]domain.TransactionRecord
}

// NewHistoryStore creates an empty in-memory history.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[domain.TransactionID]domain.TransactionRecord),
	}
}

// Insert stores a new record, rejecting duplicate transaction ids.
func (s *HistoryStore) Insert(_ context.Context, rec *domain.TransactionRecord) error {
	if _, ok := s.records[rec.TxID]; ok {
		return apperror.ErrDuplicateTransaction()
	}
	// Stored by value so callers cannot mutate history behind the store.
	s.records[rec.TxID] = *rec
	return nil
}

// Get returns a copy of the record, or (nil, nil) when absent.
func (s *HistoryStore) Get(_ context.Context, txID domain.TransactionID) (*domain.TransactionRecord, error) {
	rec, ok := s.records[txID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// SetStatus transitions the dispute status of an existing record.
func (s *HistoryStore) SetStatus(_ context.Context, txID domain.TransactionID, status domain.DisputeStatus) error {
	rec, ok := s.records[txID]
	if !ok {
		return apperror.ErrNotFound("transaction record")
	}
	rec.Status = status
	s.records[txID] = rec
	return nil
}

// Len returns the number of retained records.
func (s *HistoryStore) Len() int {
	return len(s.records)
}
