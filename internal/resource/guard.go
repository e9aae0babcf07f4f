package resource

import (
	"context"
	"sync"
)

// Guard lets at most one run of an action proceed at a time.
type Guard struct {
	mu   sync.Mutex
	busy bool
}

// Busy is the "submitting" flag a form uses to disable its button.
func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Do runs fn unless another Do is in progress, in which case it returns ErrBusy.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return ErrBusy
	}
	g.busy = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.busy = false
		g.mu.Unlock()
	}()
	return fn(ctx)
}
