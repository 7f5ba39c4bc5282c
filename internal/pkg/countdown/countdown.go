// Package countdown implements a one-second ticking counter with tick and
// completion callbacks. It is the shared clock behind OTP expiry, resend
// cooldowns and banner auto-hide.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Severity is the display urgency of the remaining time.
type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning" // ≤ 30s
	SeverityDanger  Severity = "danger"  // ≤ 10s
)

const (
	warningThreshold = 30
	dangerThreshold  = 10
)

// Option configures a Timer.
type Option func(*Timer)

// WithInterval overrides the one-second tick period.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

// OnTick registers a callback invoked with the remaining seconds after every decrement.
func OnTick(fn func(remaining int)) Option {
	return func(t *Timer) { t.onTick = fn }
}

// OnDone registers a callback invoked exactly once when the timer reaches zero.
func OnDone(fn func()) Option {
	return func(t *Timer) { t.onDone = fn }
}

// Timer counts down from an initial number of seconds. Callbacks run
// without the timer's lock held, so they may call back into the Timer.
type Timer struct {
	interval time.Duration
	onTick   func(int)
	onDone   func()

	mu        sync.Mutex
	remaining int
	fired     bool
	gen       uint64 // bumped on Stop/Reset so stale ticker goroutines become no-ops
	stop      chan struct{}
}

// New returns a stopped Timer. Call Start to begin ticking.
func New(initial int, opts ...Option) *Timer {
	t := &Timer{interval: time.Second, remaining: max(initial, 0)}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Start begins ticking. A timer created with zero seconds completes
// immediately. Calling Start on a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.stop != nil {
		t.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	gen := t.gen
	zero := t.remaining == 0
	t.mu.Unlock()

	if zero {
		t.finish(gen)
		return
	}
	go t.run(stop, gen)
}

func (t *Timer) run(stop <-chan struct{}, gen uint64) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if rem, ok := t.tick(gen); !ok || rem == 0 {
				return
			}
		}
	}
}

// Tick decrements the timer by one second immediately and returns the
// remaining seconds. It is what the ticker goroutine calls; tests and
// callers that drive time themselves may call it directly.
func (t *Timer) Tick() int {
	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()
	rem, _ := t.tick(gen)
	return rem
}

func (t *Timer) tick(gen uint64) (int, bool) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return 0, false
	}
	if t.remaining == 0 {
		t.mu.Unlock()
		return 0, true
	}
	t.remaining--
	rem := t.remaining
	onTick := t.onTick
	t.mu.Unlock()

	if onTick != nil {
		onTick(rem)
	}
	if rem == 0 {
		t.finish(gen)
	}
	return rem, true
}

func (t *Timer) finish(gen uint64) {
	t.mu.Lock()
	if t.fired || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.fired = true
	onDone := t.onDone
	t.mu.Unlock()

	if onDone != nil {
		onDone()
	}
}

// Stop cancels ticking. Pending callbacks from the cancelled run are dropped.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.gen++
}

// Reset restarts the countdown from initial seconds. A running timer keeps
// running; a stopped one stays stopped. The completion callback is re-armed.
func (t *Timer) Reset(initial int) {
	t.mu.Lock()
	running := t.stop != nil
	t.stopLocked()
	t.remaining = max(initial, 0)
	t.fired = false
	t.mu.Unlock()

	if running {
		t.Start()
	}
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether the ticker goroutine is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil && t.remaining > 0
}

// Format renders the remaining time as MM:SS.
func (t *Timer) Format() string {
	return Format(t.Remaining())
}

// Severity classifies the remaining time for display.
func (t *Timer) Severity() Severity {
	return SeverityFor(t.Remaining())
}

// Format renders seconds as MM:SS. Negative input renders as 00:00.
func Format(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func SeverityFor(seconds int) Severity {
	switch {
	case seconds <= dangerThreshold:
		return SeverityDanger
	case seconds <= warningThreshold:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}
