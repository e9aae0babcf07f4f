package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ministagram/internal/model"
)

// FollowAPI covers the follow graph under /users.
type FollowAPI struct{ c *Client }

// Follow follows username, or files a pending request when the account is private.
func (f *FollowAPI) Follow(ctx context.Context, username string) error {
	return f.c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(username)+"/follow", nil, nil)
}

func (f *FollowAPI) Unfollow(ctx context.Context, username string) error {
	return f.c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(username)+"/unfollow", nil, nil)
}

// Followers lists the current user's followers.
func (f *FollowAPI) Followers(ctx context.Context) ([]model.User, error) {
	return getJSON[[]model.User](ctx, f.c, "/users/followers")
}

// Following lists the accounts the current user follows.
func (f *FollowAPI) Following(ctx context.Context) ([]model.User, error) {
	return getJSON[[]model.User](ctx, f.c, "/users/following")
}

func (f *FollowAPI) FollowersOf(ctx context.Context, username string) ([]model.User, error) {
	return getJSON[[]model.User](ctx, f.c, "/users/"+url.PathEscape(username)+"/followers")
}

func (f *FollowAPI) FollowingOf(ctx context.Context, username string) ([]model.User, error) {
	return getJSON[[]model.User](ctx, f.c, "/users/"+url.PathEscape(username)+"/following")
}

// Requests lists pending incoming follow requests.
func (f *FollowAPI) Requests(ctx context.Context) ([]model.FollowRequest, error) {
	return getJSON[[]model.FollowRequest](ctx, f.c, "/users/follow-requests")
}

func (f *FollowAPI) Accept(ctx context.Context, username string) error {
	return f.Respond(ctx, username, model.FollowAccept)
}

func (f *FollowAPI) Reject(ctx context.Context, username string) error {
	return f.Respond(ctx, username, model.FollowReject)
}

// Respond accepts or rejects the pending request from username.
func (f *FollowAPI) Respond(ctx context.Context, username string, action model.FollowAction) error {
	if !action.Valid() {
		return fmt.Errorf("follow request: unknown action %q", action)
	}
	return f.c.do(ctx, http.MethodPatch, "/users/follow/"+url.PathEscape(username)+"/"+string(action), nil, nil)
}
