package processor

import (
	"sync/atomic"
	"time"
)

type ServiceMetrics struct {
	checked         int64
	failed          int64
	incomplete      int64
	repaired        int64
	totalDurationNs int64
	outstanding     int64
}

type Stats struct {
	Checked     int64
	Failed      int64
	Incomplete  int64
	Repaired    int64
	AvgDuration time.Duration
	// Outstanding is what the last complete sweep left unrepaired.
	Outstanding int64
}

func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{}
}

func (m *ServiceMetrics) RecordSuccess(duration time.Duration, incomplete, repaired int) {
	atomic.AddInt64(&m.checked, 1)
	atomic.AddInt64(&m.incomplete, int64(incomplete))
	atomic.AddInt64(&m.repaired, int64(repaired))
	atomic.AddInt64(&m.totalDurationNs, int64(duration))
}

func (m *ServiceMetrics) SetOutstanding(n int64) {
	atomic.StoreInt64(&m.outstanding, n)
}

func (m *ServiceMetrics) RecordFailure() {
	atomic.AddInt64(&m.failed, 1)
}

func (m *ServiceMetrics) GetStats() Stats {
	checked := atomic.LoadInt64(&m.checked)
	durationNs := atomic.LoadInt64(&m.totalDurationNs)

	avg := time.Duration(0)
	if checked > 0 {
		avg = time.Duration(durationNs / checked)
	}

	return Stats{
		Checked:     checked,
		Failed:      atomic.LoadInt64(&m.failed),
		Incomplete:  atomic.LoadInt64(&m.incomplete),
		Repaired:    atomic.LoadInt64(&m.repaired),
		AvgDuration: avg,
		Outstanding: atomic.LoadInt64(&m.outstanding),
	}
}

func (m *ServiceMetrics) Reset() {
	atomic.StoreInt64(&m.checked, 0)
	atomic.StoreInt64(&m.failed, 0)
	atomic.StoreInt64(&m.incomplete, 0)
	atomic.StoreInt64(&m.repaired, 0)
	atomic.StoreInt64(&m.totalDurationNs, 0)
	atomic.StoreInt64(&m.outstanding, 0)
}
