package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into one callback. The callback
// fires once the interval passes without a new event, with the path of the
// last event seen.
type Debouncer struct {
	interval time.Duration
	callback func(path string)

	mu       sync.Mutex
	timer    *time.Timer
	lastPath string
}

// NewDebouncer creates a debouncer firing callback after interval of quiet.
func NewDebouncer(interval time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event for path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastPath = path

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.mu.Lock()
	p := d.lastPath
	d.mu.Unlock()

	d.callback(p)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
