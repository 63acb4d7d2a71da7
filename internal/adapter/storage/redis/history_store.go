package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/pkg/apperror"

	goredis "github.com/redis/go-redis/v9"
)

// HistoryStore implements ports.HistoryStore on Redis. Records are
// stored as JSON values keyed by transaction id, with no TTL: history
// must survive for the whole run so late disputes stay resolvable.
type HistoryStore struct {
	client *goredis.Client
	prefix string
}

// NewHistoryStore creates a Redis-backed history store.
func NewHistoryStore(client *goredis.Client) *HistoryStore {
	return &HistoryStore{
		client: client,
		prefix: "history:tx:",
	}
}

func (s *HistoryStore) key(txID domain.TransactionID) string {
	return fmt.Sprintf("%s%d", s.prefix, txID)
}

// Insert stores a new record. SetNX keeps a duplicate transaction id
// from silently overwriting history.
func (s *HistoryStore) Insert(ctx context.Context, rec *domain.TransactionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(rec.TxID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("redis history insert: %w", err)
	}
	if !ok {
		return apperror.ErrDuplicateTransaction()
	}
	return nil
}

// Get returns the record for a tx id, or (nil, nil) when absent.
func (s *HistoryStore) Get(ctx context.Context, txID domain.TransactionID) (*domain.TransactionRecord, error) {
	val, err := s.client.Get(ctx, s.key(txID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis history get: %w", err)
	}

	var rec domain.TransactionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal history record: %w", err)
	}
	return &rec, nil
}

// SetStatus rewrites the stored record with the new dispute status.
// Read-modify-write is safe here: the engine is single-threaded and is
// the only writer of its key space.
func (s *HistoryStore) SetStatus(ctx context.Context, txID domain.TransactionID, status domain.DisputeStatus) error {
	rec, err := s.Get(ctx, txID)
	if err != nil {
		return err
	}
	if rec == nil {
		return apperror.ErrNotFound("transaction record")
	}

	rec.Status = status
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(txID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis history status: %w", err)
	}
	return nil
}
