package draft

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid form edits into at most one draft write per idle
// gap. Each trigger cancels and reschedules the pending save with the latest
// snapshot; saves are never queued.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending map[string]interface{}
	save    func(snapshot map[string]interface{})
	stopped bool
}

func NewDebouncer(delay time.Duration, save func(snapshot map[string]interface{})) *Debouncer {
	return &Debouncer{
		delay: delay,
		save:  save,
	}
}

// Trigger schedules a save of the snapshot after the debounce delay,
// replacing any previously scheduled save.
func (d *Debouncer) Trigger(snapshot map[string]interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = snapshot
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	snapshot := d.pending
	d.pending = nil
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()

	if stopped || snapshot == nil {
		return
	}
	d.save(snapshot)
}

// Flush fires any pending save immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	snapshot := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	stopped := d.stopped
	d.mu.Unlock()

	if stopped || snapshot == nil {
		return
	}
	d.save(snapshot)
}

// Cancel drops any pending save without firing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending save and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
