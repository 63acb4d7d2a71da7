package postgres

import (
	"context"
	"errors"
	"testing"

	"ledger-replay-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyColumns() []string {
	return []string{"tx_id", "client_id", "amount", "status"}
}

func TestHistoryRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)
	rec := &domain.TransactionRecord{
		TxID:     1,
		ClientID: 7,
		Amount:   decimal.RequireFromString("12.3456"),
		Status:   domain.StatusActive,
	}

	mock.ExpectExec("INSERT INTO transaction_history").
		WithArgs(int64(1), int32(7), rec.Amount, "active").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_Insert_DuplicateKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)
	rec := &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(5), Status: domain.StatusActive}

	mock.ExpectExec("INSERT INTO transaction_history").
		WithArgs(int64(1), int32(7), rec.Amount, "active").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Insert(context.Background(), rec)
	assert.ErrorContains(t, err, "LED_004")
}

func TestHistoryRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)
	amount := decimal.RequireFromString("-3.5")

	mock.ExpectQuery("SELECT tx_id, client_id, amount, status FROM transaction_history").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(historyColumns()).AddRow(int64(2), int32(9), amount, "active"))

	rec, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.TransactionID(2), rec.TxID)
	assert.Equal(t, domain.ClientID(9), rec.ClientID)
	assert.True(t, rec.Amount.Equal(amount), "withdrawal effect stays signed")
	assert.Equal(t, domain.StatusActive, rec.Status)
}

func TestHistoryRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)

	mock.ExpectQuery("SELECT tx_id, client_id, amount, status FROM transaction_history").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	rec, err := repo.Get(context.Background(), 404)
	require.NoError(t, err, "absent record is not an error")
	assert.Nil(t, rec)
}

func TestHistoryRepo_Get_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)

	mock.ExpectQuery("SELECT tx_id, client_id, amount, status FROM transaction_history").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	rec, err := repo.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, rec)
}

func TestHistoryRepo_SetStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)

	mock.ExpectExec("UPDATE transaction_history SET status").
		WithArgs("disputed", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetStatus(context.Background(), 1, domain.StatusDisputed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_SetStatus_UnknownRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)

	mock.ExpectExec("UPDATE transaction_history SET status").
		WithArgs("disputed", int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.SetStatus(context.Background(), 404, domain.StatusDisputed)
	assert.ErrorContains(t, err, "not found")
}
