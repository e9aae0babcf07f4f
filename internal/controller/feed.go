package controller

import (
	"context"
	"sync"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// Feed is the home page: followed accounts' posts, most recent first.
type Feed struct {
	deps  Deps
	items *resource.List[model.FeedItem]

	mu       sync.Mutex
	composer *PostComposer
	byID     map[int64]*FeedCard
}

func NewFeed(d Deps) *Feed {
	f := &Feed{deps: d}
	f.items = resource.NewList("feed", d.API.Feed.List, MsgFeedLoadFailed, d.logger("Feed"))
	return f
}

func (f *Feed) Load(ctx context.Context) error { return f.items.Load(ctx) }
func (f *Feed) Loading() bool                  { return f.items.Loading() }
func (f *Feed) Err() string                    { return f.items.Err() }
func (f *Feed) Unmount()                       { f.items.Unmount() }

// Cards returns one FeedCard per item. Cards are reused across reloads.
func (f *Feed) Cards() []*FeedCard {
	items := f.items.Items()

	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[int64]*FeedCard, len(items))
	out := make([]*FeedCard, 0, len(items))
	for _, item := range items {
		card, ok := f.byID[item.PostID]
		if ok {
			card.sync(item)
		} else {
			card = NewFeedCard(f.deps, item, f.items)
		}
		next[item.PostID] = card
		out = append(out, card)
	}
	f.byID = next
	return out
}

// Compose opens the composer. A successful share closes it and reloads the feed.
func (f *Feed) Compose() *PostComposer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.composer == nil {
		f.composer = NewPostComposer(f.deps, func(ctx context.Context, _ model.Post) {
			f.CloseComposer()
			_ = f.Load(ctx)
		})
	}
	return f.composer
}

// Composer is the open composer, or nil.
func (f *Feed) Composer() *PostComposer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.composer
}

func (f *Feed) CloseComposer() {
	f.mu.Lock()
	f.composer = nil
	f.mu.Unlock()
}
