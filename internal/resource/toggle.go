package resource

import (
	"context"
	"sync"
)

// Toggle is a boolean with an attached count, e.g. "liked" and the like total. Flip
// shows the new value immediately and reverts it if the server call fails.
type Toggle struct {
	mu    sync.Mutex
	on    bool
	count int
	busy  bool
}

func NewToggle(on bool, count int) *Toggle {
	return &Toggle{on: on, count: count}
}

// State returns the displayed value and count.
func (t *Toggle) State() (bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.on, t.count
}

func (t *Toggle) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// Reset syncs the toggle to server state. It is ignored while a flip is in flight.
func (t *Toggle) Reset(on bool, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy {
		return
	}
	t.on, t.count = on, count
}

// Flip applies the tentative value, then calls apply with it. On error the previous
// value is restored and the error returned.
func (t *Toggle) Flip(ctx context.Context, apply func(ctx context.Context, on bool) error) error {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		return ErrBusy
	}
	prevOn, prevCount := t.on, t.count
	t.on = !t.on
	if t.on {
		t.count++
	} else if t.count > 0 {
		t.count--
	}
	next := t.on
	t.busy = true
	t.mu.Unlock()

	err := apply(ctx, next)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = false
	if err != nil {
		t.on, t.count = prevOn, prevCount
	}
	return err
}
