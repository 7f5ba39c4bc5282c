package banner

import (
	"sync"
	"time"

	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/pkg/countdown"
)

// ExitDelay is the pause between a banner's countdown reaching zero and its
// dismissal, leaving room for the exit animation.
const ExitDelay = 300 * time.Millisecond

// AutoHider runs one countdown per auto-hiding banner and calls dismiss for
// each when its time is up.
type AutoHider struct {
	dismiss  func(bannerID int)
	interval time.Duration
	delay    time.Duration

	mu     sync.Mutex
	timers map[int]*countdown.Timer
	exits  map[int]*time.Timer
}

// AutoHideOption configures an AutoHider.
type AutoHideOption func(*AutoHider)

// WithTickInterval shortens the countdown tick, for tests.
func WithTickInterval(d time.Duration) AutoHideOption {
	return func(a *AutoHider) { a.interval = d }
}

func WithExitDelay(d time.Duration) AutoHideOption {
	return func(a *AutoHider) { a.delay = d }
}

func NewAutoHider(dismiss func(bannerID int), opts ...AutoHideOption) *AutoHider {
	a := &AutoHider{
		dismiss:  dismiss,
		interval: time.Second,
		delay:    ExitDelay,
		timers:   make(map[int]*countdown.Timer),
		exits:    make(map[int]*time.Timer),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Track starts countdowns for banners with AutoHideSeconds > 0. Banners
// already being tracked keep their running countdown.
func (a *AutoHider) Track(banners []domain.NotificationBanner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range banners {
		if b.AutoHideSeconds <= 0 {
			continue
		}
		if _, ok := a.timers[b.ID]; ok {
			continue
		}
		id := b.ID
		t := countdown.New(b.AutoHideSeconds,
			countdown.WithInterval(a.interval),
			countdown.OnDone(func() { a.expire(id) }),
		)
		a.timers[id] = t
		t.Start()
	}
}

// Remaining reports the seconds left before bannerID hides, and whether it
// is being tracked.
func (a *AutoHider) Remaining(bannerID int) (int, bool) {
	a.mu.Lock()
	t, ok := a.timers[bannerID]
	a.mu.Unlock()
	if !ok {
		return 0, false
	}
	return t.Remaining(), true
}

// Cancel stops the countdown for a banner the user dismissed by hand.
func (a *AutoHider) Cancel(bannerID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked(bannerID)
}

// Stop cancels every pending countdown and exit delay.
func (a *AutoHider) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.timers {
		a.cancelLocked(id)
	}
	for id := range a.exits {
		a.cancelLocked(id)
	}
}

func (a *AutoHider) cancelLocked(id int) {
	if t, ok := a.timers[id]; ok {
		t.Stop()
		delete(a.timers, id)
	}
	if e, ok := a.exits[id]; ok {
		e.Stop()
		delete(a.exits, id)
	}
}

func (a *AutoHider) expire(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.timers[id]; !ok {
		return
	}
	delete(a.timers, id)
	a.exits[id] = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		_, pending := a.exits[id]
		delete(a.exits, id)
		a.mu.Unlock()
		if pending {
			a.dismiss(id)
		}
	})
}
