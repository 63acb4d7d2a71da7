package ports

import (
	"context"

	"ledger-replay-engine/internal/core/domain"
)

//go:generate mockgen -source=history.go -destination=mocks/history.go -package=mocks

// HistoryStore is the shared transaction history: the recorded monetary
// effect and dispute status of every deposit and withdrawal, keyed by
// transaction id. Records are inserted once and never deleted, which is
// what makes a dispute resolvable at any later point in the stream (and
// what makes memory growth unbounded for the in-memory backend — a
// documented scaling limit, not a bug).
//
// The engine is single-threaded, so implementations do not need to make
// Insert/SetStatus atomic with respect to Get.
type HistoryStore interface {
	// Insert stores a new record. The engine guarantees the tx id is
	// unused; implementations may additionally reject duplicates.
	Insert(ctx context.Context, rec *domain.TransactionRecord) error

	// Get returns the record for a tx id, or (nil, nil) when absent.
	Get(ctx context.Context, txID domain.TransactionID) (*domain.TransactionRecord, error)

	// SetStatus transitions the dispute status of an existing record.
	SetStatus(ctx context.Context, txID domain.TransactionID, status domain.DisputeStatus) error
}
