package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/pkg/logger"
	"github.com/nimasrn/trader-ledger/pkg/prom"
	"github.com/nimasrn/trader-ledger/pkg/worker"
)

const ProcessingTimeout = time.Second * 30

// ReconcileService is the part of the ledger the sweeper drives.
type ReconcileService interface {
	Users(ctx context.Context) ([]string, error)
	Reconcile(ctx context.Context, userID string, repair bool) (*model.ReconcileResult, error)
}

type Config struct {
	Interval time.Duration
	Workers  int
	Repair   bool
}

// Sweeper periodically looks for conversions that were only half written,
// one user per job on a bounded worker pool.
type Sweeper struct {
	svc     ReconcileService
	cfg     Config
	metrics *ServiceMetrics
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewSweeper(svc ReconcileService, cfg Config) *Sweeper {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		svc:     svc,
		cfg:     cfg,
		metrics: NewServiceMetrics(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start runs a sweep right away and then on every tick until Stop.
func (s *Sweeper) Start() {
	logger.Info("starting reconciliation sweeper", "interval", s.cfg.Interval.String(), "workers", s.cfg.Workers, "repair", s.cfg.Repair)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Sweeper) sweep() {
	if err := s.RunOnce(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("reconciliation sweep failed", "error", err)
	}
	s.reportMetrics()
}

// RunOnce reconciles every known user and returns when all of them are done.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	users, err := s.svc.Users(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	var outstanding int64
	if len(users) == 0 {
		s.metrics.SetOutstanding(0)
		prom.SetIncompleteConversions("sweep", 0)
		return nil
	}

	w := worker.NewWorkerManager(len(users), s.cfg.Workers)
	w.SetWorker(func(ctx context.Context, workerIndex int, job interface{}) {
		atomic.AddInt64(&outstanding, s.workerHandler(ctx, workerIndex, job))
	})
	for _, uid := range users {
		if !w.Enqueue(ctx, uid) {
			break
		}
	}
	w.Close()
	if err := w.Start(ctx); err != nil {
		return err
	}

	s.metrics.SetOutstanding(outstanding)
	prom.SetIncompleteConversions("sweep", int(outstanding))
	return nil
}

// workerHandler reconciles one user and returns how many incomplete
// conversions are left for it.
func (s *Sweeper) workerHandler(ctx context.Context, workerIndex int, job interface{}) int64 {
	uid, ok := job.(string)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return 0
	}

	userCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.svc.Reconcile(userCtx, uid, s.cfg.Repair)
	if err != nil {
		s.metrics.RecordFailure()
		logger.Error("failed to reconcile user", "worker", workerIndex, "user_id", uid, "error", err)
		return 0
	}
	s.metrics.RecordSuccess(time.Since(start), len(res.Incomplete), res.Repaired)
	return int64(len(res.Incomplete) - res.Repaired)
}

func (s *Sweeper) reportMetrics() {
	stats := s.metrics.GetStats()
	logger.Info("reconciliation stats",
		"users_checked", stats.Checked,
		"users_failed", stats.Failed,
		"incomplete", stats.Incomplete,
		"repaired", stats.Repaired,
		"avg_duration_ms", stats.AvgDuration.Milliseconds(),
	)
}

// Stats returns the counters collected since start.
func (s *Sweeper) Stats() Stats {
	return s.metrics.GetStats()
}

// Stop cancels the running sweep and waits for it to return.
func (s *Sweeper) Stop() {
	logger.Info("shutting down reconciliation sweeper")
	s.cancel()
	s.wg.Wait()
	s.reportMetrics()
	logger.Info("reconciliation sweeper stopped")
}
