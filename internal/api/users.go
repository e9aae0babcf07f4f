package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ministagram/internal/model"
)

// ErrUserNotFound is returned by FindByUsername when no listed user matches.
var ErrUserNotFound = errors.New("user not found")

// UserAPI covers /users.
type UserAPI struct{ c *Client }

func (u *UserAPI) List(ctx context.Context) ([]model.User, error) {
	return getJSON[[]model.User](ctx, u.c, "/users")
}

func (u *UserAPI) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := getJSON[model.User](ctx, u.c, fmt.Sprintf("/users/%d", id))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserAPI) Update(ctx context.Context, id int64, payload model.UpdateUserPayload) (*model.User, error) {
	user, err := sendJSON[model.User](ctx, u.c, http.MethodPut, fmt.Sprintf("/users/%d", id), payload)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername lists every user and picks the matching one; the API has no
// lookup-by-username endpoint.
func (u *UserAPI) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := u.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}
