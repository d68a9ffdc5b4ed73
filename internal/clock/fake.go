package clock

import (
	"sort"
	"sync"
	"time"
)

// NewFake returns a Fake clock pinned to initial. Time moves only when
// Advance is called; timers and tickers fire synchronously during
// Advance, in deadline order.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

// Fake is a deterministic Clock for tests. Safe for concurrent use.
//
// AfterFunc callbacks run synchronously inside Advance. Do not call
// Advance from within a callback.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	fn       func()              // AfterFunc waiters
	ch       chan time.Time      // ticker waiters
	interval time.Duration       // non-zero for tickers
	stopped  bool
	fired    bool
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	w := &fakeWaiter{deadline: f.current.Add(d), fn: fn}
	f.waiters = append(f.waiters, w)
	f.mu.Unlock()
	if d <= 0 {
		f.Advance(0)
	}
	return &fakeTimer{clock: f, w: w}
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	w := &fakeWaiter{
		deadline: f.current.Add(d),
		ch:       make(chan time.Time, 1),
		interval: d,
	}
	f.waiters = append(f.waiters, w)
	f.mu.Unlock()
	return &fakeTicker{clock: f, w: w}
}

// Advance moves the clock forward by d, firing every waiter whose
// deadline falls inside the window, in deadline order. Rescheduled
// tickers that land inside the same window fire again.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.current.Add(d)
	for {
		w := f.nextDue(target)
		if w == nil {
			break
		}
		f.current = w.deadline
		if w.interval > 0 {
			w.deadline = w.deadline.Add(w.interval)
			select {
			case w.ch <- f.current:
			default: // consumer behind, drop the tick
			}
			continue
		}
		w.fired = true
		fn := w.fn
		f.mu.Unlock()
		fn()
		f.mu.Lock()
	}
	f.current = target
	f.compact()
	f.mu.Unlock()
}

// nextDue returns the unfired waiter with the earliest deadline at or
// before target, or nil. Caller holds f.mu.
func (f *Fake) nextDue(target time.Time) *fakeWaiter {
	sort.SliceStable(f.waiters, func(i, j int) bool {
		return f.waiters[i].deadline.Before(f.waiters[j].deadline)
	})
	for _, w := range f.waiters {
		if w.stopped || w.fired {
			continue
		}
		if !w.deadline.After(target) {
			return w
		}
	}
	return nil
}

func (f *Fake) compact() {
	kept := f.waiters[:0]
	for _, w := range f.waiters {
		if !w.stopped && !w.fired {
			kept = append(kept, w)
		}
	}
	f.waiters = kept
}

// PendingTimers reports how many unfired one-shot timers are scheduled.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.waiters {
		if w.interval == 0 && !w.stopped && !w.fired {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock *Fake
	w     *fakeWaiter
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.w.fired || t.w.stopped {
		return false
	}
	t.w.stopped = true
	return true
}

type fakeTicker struct {
	clock *Fake
	w     *fakeWaiter
}

func (t *fakeTicker) C() <-chan time.Time { return t.w.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	t.w.stopped = true
	t.clock.mu.Unlock()
}
