// internal/app/system/workers/pendingpoll.go
package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/missio/internal/app/system/metrics"
	"github.com/dalemusser/missio/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// PendingCounter counts profiles awaiting approval.
type PendingCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

// PendingPoll refreshes the pending-approval count on a fixed interval.
// A failed refresh is logged and skipped; the previous value is kept.
type PendingPoll struct {
	counter  PendingCounter
	log      *zap.Logger
	interval time.Duration
	count    atomic.Int64
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPendingPoll creates a poller that calls counter every interval.
func NewPendingPoll(counter PendingCounter, logger *zap.Logger, interval time.Duration) *PendingPoll {
	return &PendingPoll{
		counter:  counter,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start refreshes once and then begins the background loop.
func (w *PendingPoll) Start() {
	w.Refresh()
	w.wg.Add(1)
	go w.run()
	w.log.Info("pending approval poller started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *PendingPoll) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("pending approval poller stopped")
	})
}

// Count returns the last successfully read count.
func (w *PendingPoll) Count() int64 {
	return w.count.Load()
}

// Refresh reads the count now.
func (w *PendingPoll) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	n, err := w.counter.CountPending(ctx)
	if err != nil {
		metrics.PendingPollErrors.Inc()
		w.log.Debug("pending approval refresh failed", zap.Error(err))
		return
	}
	w.count.Store(n)
	metrics.SetPending(n)
}

func (w *PendingPoll) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Refresh()
		}
	}
}
