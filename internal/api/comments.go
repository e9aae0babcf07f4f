package api

import (
	"context"
	"fmt"
	"net/http"

	"ministagram/internal/model"
)

// CommentAPI covers post comments.
type CommentAPI struct{ c *Client }

func (a *CommentAPI) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	return getJSON[[]model.Comment](ctx, a.c, fmt.Sprintf("/posts/%d/comments", postID))
}

func (a *CommentAPI) Create(ctx context.Context, postID int64, payload model.CommentPayload) (*model.Comment, error) {
	comment, err := sendJSON[model.Comment](ctx, a.c, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), payload)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (a *CommentAPI) Delete(ctx context.Context, commentID int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil)
}
