package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/trader-ledger/internal/idempotency"
	"github.com/nimasrn/trader-ledger/internal/kvstore"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/redis"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

// newTestService wires the service to a redis store backed by miniredis,
// with a fixed clock and sequential ids.
func newTestService(t *testing.T, currency string) (*LedgerService, *kvstore.Store) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "test:", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	store := kvstore.NewStore(rdb)
	svc := NewLedgerService(store, idempotency.NewService(rdb, idempotency.DefaultConfig()), currency)
	svc.now = func() time.Time { return fixedNow }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return svc, store
}

func f64(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListTraders(ctx context.Context, userID string) ([]model.Trader, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trader), args.Error(1)
}

func (m *MockStore) GetTrader(ctx context.Context, userID, id string) (*model.Trader, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trader), args.Error(1)
}

func (m *MockStore) SaveTrader(ctx context.Context, userID string, t model.Trader) error {
	return m.Called(ctx, userID, t).Error(0)
}

func (m *MockStore) TouchTrader(ctx context.Context, userID, id string, at time.Time) error {
	return m.Called(ctx, userID, id, at).Error(0)
}

func (m *MockStore) DeleteTrader(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockStore) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockStore) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockStore) SaveTransaction(ctx context.Context, userID string, tx model.Transaction) error {
	return m.Called(ctx, userID, tx).Error(0)
}

func (m *MockStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockStore) CountByProductType(ctx context.Context, userID, productTypeID string) (int64, error) {
	args := m.Called(ctx, userID, productTypeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListProductTypes(ctx context.Context, userID string) ([]model.ProductType, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductType), args.Error(1)
}

func (m *MockStore) GetProductType(ctx context.Context, userID, id string) (*model.ProductType, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductType), args.Error(1)
}

func (m *MockStore) SaveProductType(ctx context.Context, userID string, p model.ProductType) error {
	return m.Called(ctx, userID, p).Error(0)
}

func (m *MockStore) DeleteProductType(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func (m *MockStore) Snapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Snapshot), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
