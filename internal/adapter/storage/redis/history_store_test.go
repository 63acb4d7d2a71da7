package redis

import (
	"context"
	"testing"

	"ledger-replay-engine/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewHistoryStore(client)
}

func TestHistoryStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, rec, "absent record returns nil, nil")

	in := &domain.TransactionRecord{
		TxID:     1,
		ClientID: 7,
		Amount:   decimal.RequireFromString("12.3456"),
		Status:   domain.StatusActive,
	}
	require.NoError(t, store.Insert(ctx, in))

	rec, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.TransactionID(1), rec.TxID)
	assert.Equal(t, domain.ClientID(7), rec.ClientID)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("12.3456")), "decimal survives the JSON round trip")
	assert.Equal(t, domain.StatusActive, rec.Status)
}

func TestHistoryStore_DuplicateInsertRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &domain.TransactionRecord{TxID: 1, ClientID: 7, Amount: decimal.NewFromInt(10), Status: domain.StatusActive}
	require.NoError(t, store.Insert(ctx, rec))

	err := store.Insert(ctx, &domain.TransactionRecord{TxID: 1, ClientID: 9, Amount: decimal.NewFromInt(99), Status: domain.StatusActive})
	assert.ErrorContains(t, err, "LED_004")

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientID(7), got.ClientID, "original record untouched")
}

func TestHistoryStore_SetStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &domain.TransactionRecord{TxID: 5, ClientID: 2, Amount: decimal.NewFromInt(4), Status: domain.StatusActive}
	require.NoError(t, store.Insert(ctx, rec))

	require.NoError(t, store.SetStatus(ctx, 5, domain.StatusDisputed))
	got, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisputed, got.Status)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(4)), "amount preserved across status change")

	require.NoError(t, store.SetStatus(ctx, 5, domain.StatusChargedBack))
	got, _ = store.Get(ctx, 5)
	assert.Equal(t, domain.StatusChargedBack, got.Status)
}

func TestHistoryStore_SetStatusUnknownRecord(t *testing.T) {
	store := newTestStore(t)
	err := store.SetStatus(context.Background(), 404, domain.StatusDisputed)
	assert.ErrorContains(t, err, "not found")
}
