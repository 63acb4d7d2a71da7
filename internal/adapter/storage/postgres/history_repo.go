package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Expected schema:
//
//	CREATE TABLE transaction_history (
//	    tx_id     BIGINT PRIMARY KEY,
//	    client_id INTEGER NOT NULL,
//	    amount    NUMERIC(20,4) NOT NULL,
//	    status    TEXT NOT NULL DEFAULT 'active'
//	);

// HistoryRepo implements ports.HistoryStore on PostgreSQL.
type HistoryRepo struct {
	pool Pool
}

// NewHistoryRepo creates a Postgres-backed history store.
func NewHistoryRepo(pool Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

// Insert stores a new record. The primary key turns a duplicate
// transaction id into a unique violation, reported as LED_004.
func (r *HistoryRepo) Insert(ctx context.Context, rec *domain.TransactionRecord) error {
	query := `INSERT INTO transaction_history (tx_id, client_id, amount, status)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, int64(rec.TxID), int32(rec.ClientID), rec.Amount, string(rec.Status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.ErrDuplicateTransaction()
		}
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Get returns the record for a tx id, or (nil, nil) when absent.
func (r *HistoryRepo) Get(ctx context.Context, txID domain.TransactionID) (*domain.TransactionRecord, error) {
	query := `SELECT tx_id, client_id, amount, status FROM transaction_history WHERE tx_id = $1`

	var (
		id     int64
		client int32
		amount decimal.Decimal
		status string
	)
	err := r.pool.QueryRow(ctx, query, int64(txID)).Scan(&id, &client, &amount, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get history record: %w", err)
	}

	return &domain.TransactionRecord{
		TxID:     domain.TransactionID(id),
		ClientID: domain.ClientID(client),
		Amount:   amount,
		Status:   domain.DisputeStatus(status),
	}, nil
}

// SetStatus transitions the dispute status of an existing record.
func (r *HistoryRepo) SetStatus(ctx context.Context, txID domain.TransactionID, status domain.DisputeStatus) error {
	query := `UPDATE transaction_history SET status = $1 WHERE tx_id = $2`

	tag, err := r.pool.Exec(ctx, query, string(status), int64(txID))
	if err != nil {
		return fmt.Errorf("update history status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound("transaction record")
	}
	return nil
}
