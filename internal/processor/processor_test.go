package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/prom"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Users(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReconcileService) Reconcile(ctx context.Context, userID string, repair bool) (*model.ReconcileResult, error) {
	args := m.Called(ctx, userID, repair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconcileResult), args.Error(1)
}

func incomplete(n int) []model.IncompleteConversion {
	out := make([]model.IncompleteConversion, n)
	for i := range out {
		out[i] = model.IncompleteConversion{ConversionID: "c", TransactionIDs: []string{"x"}}
	}
	return out
}

func TestSweeper_RunOnce(t *testing.T) {
	svc := new(MockReconcileService)
	svc.On("Users", mock.Anything).Return([]string{"u1", "u2", "u3"}, nil)
	svc.On("Reconcile", mock.Anything, "u1", true).Return(&model.ReconcileResult{Incomplete: incomplete(2), Repaired: 2}, nil)
	svc.On("Reconcile", mock.Anything, "u2", true).Return(&model.ReconcileResult{}, nil)
	svc.On("Reconcile", mock.Anything, "u3", true).Return(nil, errors.New("store down"))

	s := NewSweeper(svc, Config{Interval: time.Hour, Workers: 2, Repair: true})
	require.NoError(t, s.RunOnce(context.Background()))

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.Checked)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(2), stats.Incomplete)
	assert.Equal(t, int64(2), stats.Repaired)
	assert.Equal(t, int64(0), stats.Outstanding)
	svc.AssertExpectations(t)
}

func TestSweeper_OutstandingIsNotAccumulated(t *testing.T) {
	require.NoError(t, prom.Create("test-host", "test", "processor_test"))

	svc := new(MockReconcileService)
	svc.On("Users", mock.Anything).Return([]string{"u1", "u2"}, nil)
	svc.On("Reconcile", mock.Anything, "u1", false).Return(&model.ReconcileResult{Incomplete: incomplete(1)}, nil)
	svc.On("Reconcile", mock.Anything, "u2", false).Return(&model.ReconcileResult{Incomplete: incomplete(2)}, nil)

	s := NewSweeper(svc, Config{Workers: 2})
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RunOnce(context.Background()))
	}

	stats := s.Stats()
	assert.Equal(t, int64(9), stats.Incomplete)
	assert.Equal(t, int64(3), stats.Outstanding)
	gauge := prom.MetricCollectionGaugeVec[prom.SystemLedger+prom.MetricIncompleteConversions]
	assert.Equal(t, 3.0, testutil.ToFloat64(gauge.WithLabelValues("sweep")))
}

func TestSweeper_RunOnceNoUsers(t *testing.T) {
	svc := new(MockReconcileService)
	svc.On("Users", mock.Anything).Return([]string{}, nil)

	s := NewSweeper(svc, Config{})
	assert.NoError(t, s.RunOnce(context.Background()))
	svc.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweeper_RunOnceUsersError(t *testing.T) {
	svc := new(MockReconcileService)
	svc.On("Users", mock.Anything).Return(nil, errors.New("boom"))

	s := NewSweeper(svc, Config{})
	err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "listing users")
}

func TestSweeper_StartStop(t *testing.T) {
	svc := new(MockReconcileService)
	svc.On("Users", mock.Anything).Return([]string{"u1"}, nil)
	svc.On("Reconcile", mock.Anything, "u1", false).Return(&model.ReconcileResult{}, nil)

	s := NewSweeper(svc, Config{Interval: time.Hour, Workers: 1})
	s.Start()

	assert.Eventually(t, func() bool {
		return s.Stats().Checked == 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Equal(t, int64(1), s.Stats().Checked)
}

func TestServiceMetrics(t *testing.T) {
	m := NewServiceMetrics()
	m.RecordSuccess(10*time.Millisecond, 1, 0)
	m.RecordSuccess(30*time.Millisecond, 0, 0)
	m.RecordFailure()
	m.SetOutstanding(4)

	stats := m.GetStats()
	assert.Equal(t, int64(4), stats.Outstanding)
	assert.Equal(t, int64(2), stats.Checked)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, 20*time.Millisecond, stats.AvgDuration)

	m.Reset()
	assert.Equal(t, Stats{}, m.GetStats())
}
