package resource

import "context"

// Reloader is a page resource that can be reloaded, on its own or after a mutation.
type Reloader interface {
	Load(ctx context.Context) error
	Mutate(ctx context.Context, fn func(ctx context.Context) error) error
}

// Loadable is one remotely loaded piece of a page, such as a List.
type Loadable interface {
	Load(ctx context.Context) error
	Loading() bool
	Err() string
	Unmount()
}

// Group is a page made of several lists loaded together. Each list keeps its own
// generation, so a late result never overwrites a newer one.
type Group []Loadable

// Load loads the lists in order and stops at the first failure.
func (g Group) Load(ctx context.Context) error {
	for _, l := range g {
		if err := l.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Mutate runs fn and, when it succeeds, reloads every list.
func (g Group) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return mutate(ctx, g, fn)
}

func (g Group) Loading() bool {
	for _, l := range g {
		if l.Loading() {
			return true
		}
	}
	return false
}

// Err is the first list error, or "".
func (g Group) Err() string {
	for _, l := range g {
		if msg := l.Err(); msg != "" {
			return msg
		}
	}
	return ""
}

func (g Group) Unmount() {
	for _, l := range g {
		l.Unmount()
	}
}

func mutate(ctx context.Context, r interface{ Load(context.Context) error }, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	// a failed or stale reload is already logged and kept for Err
	_ = r.Load(ctx)
	return nil
}
