package memory

import (
	"context"
	"testing"

	"ledger-replay-engine/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_InsertAndGet(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	// Absent key: (nil, nil), not an error.
	rec, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, rec)

	in := &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(10), Status: domain.StatusActive}
	require.NoError(t, s.Insert(ctx, in))

	rec, err = s.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.ClientID(7), rec.ClientID)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, s.Len())
}

func TestHistoryStore_DuplicateInsertRejected(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	rec := &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(10), Status: domain.StatusActive}
	require.NoError(t, s.Insert(ctx, rec))

	err := s.Insert(ctx, &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(3), Status: domain.StatusActive})
	assert.ErrorContains(t, err, "LED_004")

	// First record untouched.
	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(10)))
}

func TestHistoryStore_SetStatus(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(10), Status: domain.StatusActive}))

	require.NoError(t, s.SetStatus(ctx, 1, domain.StatusDisputed))
	rec, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisputed, rec.Status)

	require.NoError(t, s.SetStatus(ctx, 1, domain.StatusActive))
	rec, _ = s.Get(ctx, 1)
	assert.Equal(t, domain.StatusActive, rec.Status)

	assert.ErrorContains(t, s.SetStatus(ctx, 99, domain.StatusDisputed), "not found")
}

func TestHistoryStore_GetReturnsCopy(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(10), Status: domain.StatusActive}))

	rec, err := s.Get(ctx, 1)
	require.NoError(t, err)
	rec.Status = domain.StatusChargedBack

	fresh, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, fresh.Status, "mutating a returned record must not touch the store")
}
