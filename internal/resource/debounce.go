package resource

import (
	"sync"
	"time"
)

// Debouncer runs a task only after a quiescence window with no new
// schedules. Scheduling again within the window cancels and replaces the
// pending task; Close cancels outright.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	closed bool
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule arranges for fn to run once the window elapses without another
// Schedule call. After Close it is a no-op.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Cancel drops any pending task without closing the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close cancels any pending task and rejects future schedules.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
