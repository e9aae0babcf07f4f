package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ministagram/internal/model"
)

// PostAPI covers /posts.
type PostAPI struct{ c *Client }

func (p *PostAPI) Create(ctx context.Context, payload model.PostPayload) (*model.Post, error) {
	post, err := sendJSON[model.Post](ctx, p.c, http.MethodPost, "/posts", payload)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListMine returns the current user's posts.
func (p *PostAPI) ListMine(ctx context.Context) ([]model.Post, error) {
	return getJSON[[]model.Post](ctx, p.c, "/posts")
}

func (p *PostAPI) ListByUser(ctx context.Context, username string) ([]model.Post, error) {
	return getJSON[[]model.Post](ctx, p.c, "/posts/user/"+url.PathEscape(username))
}

func (p *PostAPI) Delete(ctx context.Context, postID int64) error {
	return p.c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), nil, nil)
}

// DeleteAllMine removes every post of the current user.
func (p *PostAPI) DeleteAllMine(ctx context.Context) error {
	return p.c.do(ctx, http.MethodDelete, "/posts", nil, nil)
}

func (p *PostAPI) Like(ctx context.Context, postID int64) error {
	return p.c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, nil)
}

func (p *PostAPI) Unlike(ctx context.Context, postID int64) error {
	return p.c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/unlike", postID), nil, nil)
}

// SetLiked calls Like or Unlike.
func (p *PostAPI) SetLiked(ctx context.Context, postID int64, liked bool) error {
	if liked {
		return p.Like(ctx, postID)
	}
	return p.Unlike(ctx, postID)
}
