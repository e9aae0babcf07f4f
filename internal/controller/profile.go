package controller

import (
	"context"
	"fmt"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// Profile is the signed-in user's own profile page.
type Profile struct {
	deps  Deps
	posts *resource.List[model.Post]
	cards *postCards
}

func NewProfile(d Deps) *Profile {
	p := &Profile{deps: d}
	p.posts = resource.NewList("profile posts", func(ctx context.Context) ([]model.Post, error) {
		me, err := d.me()
		if err != nil {
			return nil, err
		}
		return d.API.Posts.ListByUser(ctx, me.Username)
	}, MsgOwnPostsLoadFailed, d.logger("Profile"))
	p.cards = &postCards{deps: d, owner: p.posts}
	return p
}

func (p *Profile) Load(ctx context.Context) error { return p.posts.Load(ctx) }
func (p *Profile) Loading() bool                  { return p.posts.Loading() }
func (p *Profile) Err() string                    { return p.posts.Err() }
func (p *Profile) Unmount()                       { p.posts.Unmount() }

func (p *Profile) User() *model.User   { return p.deps.Session.CurrentUser() }
func (p *Profile) Posts() []model.Post { return p.posts.Items() }
func (p *Profile) Cards() []*PostCard  { return p.cards.cards(p.posts.Items()) }

// Update saves profile changes and refreshes the session's user.
func (p *Profile) Update(ctx context.Context, payload model.UpdateUserPayload) (*model.User, error) {
	user, err := p.deps.Session.UpdateProfile(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}
