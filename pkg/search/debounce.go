package search

import (
	"context"
	"sync"
	"time"
)

// Debouncer holds a call back for a settle window and drops it when a newer
// call arrives for the same key during the wait. It mirrors the settle
// delay applied to user-typed search input before any request goes out.
type Debouncer struct {
	window time.Duration

	mu   sync.Mutex
	gens map[string]uint64
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		gens:   make(map[string]uint64),
	}
}

// Wait blocks for the settle window and reports whether the caller is still
// the latest call for key. A false return means a newer call superseded
// this one and its work should be skipped. A cancelled context also returns
// false.
func (d *Debouncer) Wait(ctx context.Context, key string) bool {
	d.mu.Lock()
	d.gens[key]++
	gen := d.gens[key]
	d.mu.Unlock()

	if d.window > 0 {
		timer := time.NewTimer(d.window)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}

	d.mu.Lock()
	latest := d.gens[key]
	d.mu.Unlock()
	return latest == gen
}
