package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeCounter struct {
	n     atomic.Int64
	fail  atomic.Bool
	calls atomic.Int64
}

func (f *fakeCounter) CountPending(context.Context) (int64, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return 0, errors.New("boom")
	}
	return f.n.Load(), nil
}

func TestPendingPoll_Refresh(t *testing.T) {
	c := &fakeCounter{}
	c.n.Store(4)
	w := NewPendingPoll(c, zap.NewNop(), time.Hour)

	w.Refresh()
	if got := w.Count(); got != 4 {
		t.Errorf("Count: got %d, want 4", got)
	}
}

func TestPendingPoll_ErrorKeepsPreviousValue(t *testing.T) {
	c := &fakeCounter{}
	c.n.Store(2)
	w := NewPendingPoll(c, zap.NewNop(), time.Hour)
	w.Refresh()

	c.fail.Store(true)
	c.n.Store(9)
	w.Refresh()

	if got := w.Count(); got != 2 {
		t.Errorf("Count after failed refresh: got %d, want 2", got)
	}
}

func TestPendingPoll_TicksAndStops(t *testing.T) {
	c := &fakeCounter{}
	c.n.Store(1)
	w := NewPendingPoll(c, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if c.calls.Load() < 3 {
		t.Errorf("expected at least 3 refreshes, got %d", c.calls.Load())
	}
	after := c.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if c.calls.Load() != after {
		t.Error("poller kept running after Stop")
	}
}
