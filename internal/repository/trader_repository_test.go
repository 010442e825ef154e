package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraderRepository_SaveAndGet(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTraderRepository(db)
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		err := repo.SaveTrader(ctx, "u1", model.Trader{ID: "t1", Name: "Ahmet", Phone: "555"})
		require.NoError(t, err)

		got, err := repo.GetTrader(ctx, "u1", "t1")
		require.NoError(t, err)
		assert.Equal(t, "Ahmet", got.Name)
		assert.Equal(t, "555", got.Phone)
		assert.Nil(t, got.LastTransactionDate)
	})

	t.Run("replace by id", func(t *testing.T) {
		err := repo.SaveTrader(ctx, "u1", model.Trader{ID: "t1", Name: "Ahmet Usta"})
		require.NoError(t, err)

		got, err := repo.GetTrader(ctx, "u1", "t1")
		require.NoError(t, err)
		assert.Equal(t, "Ahmet Usta", got.Name)
		assert.Empty(t, got.Phone)
	})

	t.Run("scoped by user", func(t *testing.T) {
		_, err := repo.GetTrader(ctx, "u2", "t1")
		assert.ErrorIs(t, err, model.ErrTraderNotFound)
	})

	t.Run("list sorted by name", func(t *testing.T) {
		require.NoError(t, repo.SaveTrader(ctx, "u1", model.Trader{ID: "t0", Name: "Zeki"}))
		require.NoError(t, repo.SaveTrader(ctx, "u1", model.Trader{ID: "t9", Name: "Burak"}))

		list, err := repo.ListTraders(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"Ahmet Usta", "Burak", "Zeki"}, []string{list[0].Name, list[1].Name, list[2].Name})
	})
}

func TestTraderRepository_TouchTrader(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTraderRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.SaveTrader(ctx, "u1", model.Trader{ID: "t1", Name: "Ahmet"}))

	at := time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchTrader(ctx, "u1", "t1", at))

	got, err := repo.GetTrader(ctx, "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, got.LastTransactionDate)
	assert.True(t, at.Equal(*got.LastTransactionDate))

	assert.ErrorIs(t, repo.TouchTrader(ctx, "u1", "missing", at), model.ErrTraderNotFound)
}

func TestTraderRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t).DB
	traders := NewTraderRepository(db)
	txs := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, traders.SaveTrader(ctx, "u1", model.Trader{ID: "t1", Name: "Ahmet"}))
	require.NoError(t, traders.SaveTrader(ctx, "u1", model.Trader{ID: "t2", Name: "Burak"}))
	require.NoError(t, txs.SaveTransaction(ctx, "u1", model.Transaction{ID: "x1", TraderID: "t1", Type: model.CashLoanGiven, Amount: 10, Date: time.Now()}))
	require.NoError(t, txs.SaveTransaction(ctx, "u1", model.Transaction{ID: "x2", TraderID: "t1", Type: model.CashLoanGiven, Amount: 20, Date: time.Now()}))
	require.NoError(t, txs.SaveTransaction(ctx, "u1", model.Transaction{ID: "x3", TraderID: "t2", Type: model.CashLoanGiven, Amount: 30, Date: time.Now()}))

	require.NoError(t, traders.DeleteTrader(ctx, "u1", "t1"))

	remaining, err := txs.ListTransactions(ctx, "u1", model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "x3", remaining[0].ID)

	_, err = traders.GetTrader(ctx, "u1", "t1")
	assert.ErrorIs(t, err, model.ErrTraderNotFound)

	t.Run("missing trader rolls back", func(t *testing.T) {
		err := traders.DeleteTrader(ctx, "u1", "nope")
		assert.ErrorIs(t, err, model.ErrTraderNotFound)
	})
}
