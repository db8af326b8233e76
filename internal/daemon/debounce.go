package daemon

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single fire. A fire happens
// once no trigger has arrived for the quiet window, or once maxDelay has
// elapsed since the first trigger of the burst, whichever comes first. The
// max delay keeps a sustained stream of changes (a large git checkout, an
// editor save-all) from postponing the rebuild forever.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration
	fire     func()

	mu       sync.Mutex
	armed    bool
	quietTmr *time.Timer
	maxTmr   *time.Timer
}

// NewDebouncer creates a debouncer calling fire after coalescing.
// maxDelay <= 0 disables the cap and only the quiet window applies.
func NewDebouncer(quiet, maxDelay time.Duration, fire func()) *Debouncer {
	if quiet <= 0 {
		quiet = 300 * time.Millisecond
	}
	return &Debouncer{quiet: quiet, maxDelay: maxDelay, fire: fire}
}

// Trigger records one event. Safe for concurrent use.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.quietTmr != nil {
		d.quietTmr.Stop()
	}
	d.quietTmr = time.AfterFunc(d.quiet, d.fireNow)

	if !d.armed {
		d.armed = true
		if d.maxDelay > 0 {
			d.maxTmr = time.AfterFunc(d.maxDelay, d.fireNow)
		}
	}
}

// Stop cancels any pending fire.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarmLocked()
}

func (d *Debouncer) fireNow() {
	d.mu.Lock()
	if !d.armed {
		// The other timer won the race and already fired.
		d.mu.Unlock()
		return
	}
	d.disarmLocked()
	d.mu.Unlock()

	d.fire()
}

// disarmLocked stops both timers. Caller must hold d.mu.
func (d *Debouncer) disarmLocked() {
	d.armed = false
	if d.quietTmr != nil {
		d.quietTmr.Stop()
		d.quietTmr = nil
	}
	if d.maxTmr != nil {
		d.maxTmr.Stop()
		d.maxTmr = nil
	}
}
