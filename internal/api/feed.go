package api

import (
	"context"

	"ministagram/internal/model"
)

// FeedAPI covers /feed.
type FeedAPI struct{ c *Client }

func (f *FeedAPI) List(ctx context.Context) ([]model.FeedItem, error) {
	return getJSON[[]model.FeedItem](ctx, f.c, "/feed")
}
