package api

import (
	"context"
	"net/http"

	"ministagram/internal/model"
)

// AuthAPI covers /auth.
type AuthAPI struct{ c *Client }

// Login exchanges credentials for a token. It does not store the token; that is
// the session's job.
func (a *AuthAPI) Login(ctx context.Context, payload model.LoginPayload) (*model.AuthResponse, error) {
	resp, err := sendJSON[model.AuthResponse](ctx, a.c, http.MethodPost, "/auth/login", payload)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Signup(ctx context.Context, payload model.SignupPayload) (*model.SignUpResponse, error) {
	resp, err := sendJSON[model.SignUpResponse](ctx, a.c, http.MethodPost, "/auth/signup", payload)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser resolves the stored token to a profile.
func (a *AuthAPI) CurrentUser(ctx context.Context) (*model.User, error) {
	user, err := getJSON[model.User](ctx, a.c, "/auth/me")
	if err != nil {
		return nil, err
	}
	return &user, nil
}
