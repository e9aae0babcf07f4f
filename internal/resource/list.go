// Package resource holds the client-side state primitives the page controllers are
// built from: a remotely loaded list, an optimistic toggle and a submit guard.
package resource

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"ministagram/internal/logger"
)

// ErrBusy is returned when an action is already running.
var ErrBusy = errors.New("action already in progress")

// ErrStale is returned by Load when its result was dropped because a newer load
// started or the owner unmounted.
var ErrStale = errors.New("result discarded")

// Fetcher loads the full contents of a list.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// List is a remotely loaded list. Load failures are logged and surfaced through Err
// as a fixed user-facing message; the items from the last successful load stay.
type List[T any] struct {
	name    string
	fetch   Fetcher[T]
	failMsg string
	log     *zap.Logger

	mu        sync.RWMutex
	items     []T
	loading   bool
	err       string
	gen       uint64
	unmounted bool
}

// NewList creates an empty list. failMsg is what Err reports after a failed load.
func NewList[T any](name string, fetch Fetcher[T], failMsg string, log *zap.Logger) *List[T] {
	return &List[T]{
		name:    name,
		fetch:   fetch,
		failMsg: failMsg,
		log:     logger.OrNop(log),
	}
}

// Load fetches the list. Only the most recent Load may write its result.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.unmounted {
		l.mu.Unlock()
		return ErrStale
	}
	l.gen++
	gen := l.gen
	l.loading = true
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unmounted || gen != l.gen {
		l.log.Debug("dropping stale result", zap.String("resource", l.name), zap.Uint64("generation", gen))
		return ErrStale
	}
	l.loading = false
	if err != nil {
		l.log.Warn("load failed", zap.String("resource", l.name), zap.Error(err))
		l.err = l.failMsg
		return err
	}
	l.items = items
	l.err = ""
	return nil
}

// Mutate runs a mutation and, when it succeeds, reloads the list. Only the
// mutation's error is returned; a failed reload shows up in Err.
func (l *List[T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return mutate(ctx, l, fn)
}

// Items returns a copy of the current items.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *List[T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err is the user-facing message of the last failed load, or "".
func (l *List[T]) Err() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *List[T]) Prepend(item T) {
	l.edit(func(items []T) []T { return append([]T{item}, items...) })
}

// Replace overwrites the items and clears any load error.
func (l *List[T]) Replace(items []T) {
	l.edit(func([]T) []T { return append([]T(nil), items...) })
	l.mu.Lock()
	l.err = ""
	l.mu.Unlock()
}

// Remove drops every item matching pred.
func (l *List[T]) Remove(pred func(T) bool) {
	l.edit(func(items []T) []T {
		out := items[:0:0]
		for _, item := range items {
			if !pred(item) {
				out = append(out, item)
			}
		}
		return out
	})
}

// Unmount makes every in-flight and future Load a no-op.
func (l *List[T]) Unmount() {
	l.mu.Lock()
	l.unmounted = true
	l.loading = false
	l.mu.Unlock()
}

func (l *List[T]) edit(fn func([]T) []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unmounted {
		return
	}
	l.items = fn(l.items)
}
