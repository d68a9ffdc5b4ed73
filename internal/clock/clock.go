package clock

import "time"

// Clock abstracts the timer operations the collaboration client needs
// so tests can drive debounce, backoff and heartbeat deterministically.
// Production code uses Real(); tests use NewFake().
type Clock interface {
	Now() time.Time

	// AfterFunc schedules f after d and returns a handle that can
	// cancel the pending call. Behaves like time.AfterFunc.
	AfterFunc(d time.Duration, f func()) Timer

	// NewTicker delivers ticks on its channel every d. Behaves like
	// time.NewTicker.
	NewTicker(d time.Duration) Ticker
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop prevents the timer from firing. Returns false if it
	// already fired or was already stopped.
	Stop() bool
}

// Ticker is a periodic tick source.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{time.AfterFunc(d, f)}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{time.NewTicker(d)}
}

type realTimer struct{ t *time.Timer }

func (t realTimer) Stop() bool { return t.t.Stop() }

type realTicker struct{ t *time.Ticker }

func (t *realTicker) C() <-chan time.Time { return t.t.C }
func (t *realTicker) Stop()               { t.t.Stop() }
