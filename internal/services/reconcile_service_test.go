package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/prom"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Reconcile(t *testing.T) {
	svc, store := newTestService(t, "TRY")
	ctx := context.Background()

	save := func(id, conversionID string, typ model.TransactionType) {
		require.NoError(t, store.SaveTransaction(ctx, "u1", model.Transaction{
			ID: id, TraderID: "t1", Date: day(1), Type: typ, ProductType: "altin", Quantity: f64(1), ConversionID: conversionID,
		}))
	}
	save("a1", "pair", model.PaidWithGoods)
	save("a2", "pair", model.ReceivedGoodsAsPayment)
	save("b1", "orphan", model.PaidWithGoods)
	save("c1", "triple", model.PaidWithGoods)
	save("c2", "triple", model.ReceivedGoodsAsPayment)
	save("c3", "triple", model.ReceivedGoodsAsPayment)
	save("d1", "", model.GoodsSold)

	t.Run("report only", func(t *testing.T) {
		res, err := svc.Reconcile(ctx, "u1", false)
		require.NoError(t, err)
		assert.Equal(t, []model.IncompleteConversion{
			{ConversionID: "orphan", TransactionIDs: []string{"b1"}},
			{ConversionID: "triple", TransactionIDs: []string{"c1", "c2", "c3"}},
		}, res.Incomplete)
		assert.Zero(t, res.Repaired)

		txs, err := svc.ListTransactions(ctx, "u1", model.TransactionFilter{})
		require.NoError(t, err)
		assert.Len(t, txs, 7)
	})

	t.Run("repair deletes single halves", func(t *testing.T) {
		res, err := svc.Reconcile(ctx, "u1", true)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Repaired)

		_, err = svc.GetTransaction(ctx, "u1", "b1")
		assert.ErrorIs(t, err, model.ErrTransactionNotFound)

		res, err = svc.Reconcile(ctx, "u1", true)
		require.NoError(t, err)
		require.Len(t, res.Incomplete, 1)
		assert.Equal(t, "triple", res.Incomplete[0].ConversionID)
		assert.Zero(t, res.Repaired)
	})
}

func TestLedgerService_ReconcileStoreError(t *testing.T) {
	store := new(MockStore)
	svc := NewLedgerService(store, nil, "TRY")
	ctx := context.Background()
	boom := errors.New("boom")

	store.On("ListTransactions", ctx, "u1", mock.Anything).Return(nil, boom)

	_, err := svc.Reconcile(ctx, "u1", true)
	assert.ErrorIs(t, err, boom)
	store.AssertExpectations(t)
}

func TestLedgerService_ReconcileCountsOnlyRepairs(t *testing.T) {
	require.NoError(t, prom.Create("test-host", "test", "services_test"))
	repaired := prom.MetricCollectionCounters[prom.SystemLedger+prom.MetricRepairedConversions]

	svc, store := newTestService(t, "TRY")
	ctx := context.Background()
	require.NoError(t, store.SaveTransaction(ctx, "u2", model.Transaction{
		ID: "o1", TraderID: "t1", Date: day(1), Type: model.PaidWithGoods, ProductType: "altin", Quantity: f64(1), ConversionID: "orphan",
	}))

	before := testutil.ToFloat64(repaired)
	for i := 0; i < 3; i++ {
		res, err := svc.Reconcile(ctx, "u2", false)
		require.NoError(t, err)
		require.Len(t, res.Incomplete, 1)
	}
	assert.Equal(t, before, testutil.ToFloat64(repaired))

	_, err := svc.Reconcile(ctx, "u2", true)
	require.NoError(t, err)
	_, err = svc.Reconcile(ctx, "u2", true)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(repaired))
}
