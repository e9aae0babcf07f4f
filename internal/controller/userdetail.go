package controller

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"ministagram/internal/api"
	"ministagram/internal/model"
	"ministagram/internal/resource"
	"ministagram/internal/visibility"
)

// FollowTab is the connections panel open on a user page.
type FollowTab int

const (
	TabNone FollowTab = iota
	TabFollowers
	TabFollowing
)

// UserDetail is another account's profile page.
type UserDetail struct {
	deps     Deps
	log      *zap.Logger
	username string
	posts    *resource.List[model.Post]
	cards    *postCards
	follow   resource.Guard

	mu         sync.Mutex
	loading    bool
	target     *model.User
	followers  []model.User
	following  []model.User
	listsKnown bool
	err        string
	tab        FollowTab
	gen        uint64
	unmounted  bool
}

func NewUserDetail(d Deps, username string) *UserDetail {
	u := &UserDetail{
		deps:     d,
		log:      d.logger("UserDetail"),
		username: model.NormalizeUsername(username),
	}
	u.posts = resource.NewList("user posts", func(ctx context.Context) ([]model.Post, error) {
		return d.API.Posts.ListByUser(ctx, u.username)
	}, MsgUserPostsLoadFailed, u.log)
	u.cards = &postCards{deps: d, owner: u.posts}
	return u
}

// Load finds the account, its follow lists and its posts. A missing account sets
// the "User not found" banner. Results that arrive after Unmount or after a newer
// Load are dropped with resource.ErrStale.
func (u *UserDetail) Load(ctx context.Context) error {
	u.mu.Lock()
	if u.unmounted {
		u.mu.Unlock()
		return resource.ErrStale
	}
	u.gen++
	gen := u.gen
	u.loading = true
	u.err = ""
	u.mu.Unlock()
	defer func() {
		u.mu.Lock()
		if gen == u.gen {
			u.loading = false
		}
		u.mu.Unlock()
	}()

	target, err := u.deps.API.Users.FindByUsername(ctx, u.username)

	u.mu.Lock()
	if !u.currentLocked(gen) {
		u.mu.Unlock()
		return resource.ErrStale
	}
	if err != nil {
		u.target = nil
		if errors.Is(err, api.ErrUserNotFound) {
			u.err = MsgUserNotFound
		} else {
			u.log.Warn("load user failed", zap.String("username", u.username), zap.Error(err))
			u.err = MsgUserLoadFailed
		}
		u.mu.Unlock()
		return err
	}
	u.target = target
	u.mu.Unlock()

	if err := u.loadFollows(ctx, gen); err != nil {
		return err
	}
	if err := u.posts.Load(ctx); err != nil && !errors.Is(err, resource.ErrStale) {
		return err
	}
	return nil
}

// loadFollows never fails the page. A 403 on a private account is the normal case
// for strangers; the lists are then unknown. It only reports resource.ErrStale.
func (u *UserDetail) loadFollows(ctx context.Context, gen uint64) error {
	followers, err := u.deps.API.Follows.FollowersOf(ctx, u.username)
	var following []model.User
	if err == nil {
		following, err = u.deps.API.Follows.FollowingOf(ctx, u.username)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.currentLocked(gen) {
		return resource.ErrStale
	}
	if err != nil {
		if !api.IsForbidden(err) {
			u.log.Warn("load follow lists failed", zap.String("username", u.username), zap.Error(err))
		}
		u.followers, u.following, u.listsKnown = nil, nil, false
		return nil
	}
	u.followers, u.following, u.listsKnown = followers, following, true
	return nil
}

func (u *UserDetail) currentLocked(gen uint64) bool {
	return !u.unmounted && gen == u.gen
}

func (u *UserDetail) Loading() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.loading
}

// Err is the page banner: the user lookup error, else the posts error.
func (u *UserDetail) Err() string {
	u.mu.Lock()
	err := u.err
	u.mu.Unlock()
	if err != "" {
		return err
	}
	return u.posts.Err()
}

// Unmount drops every in-flight and future load.
func (u *UserDetail) Unmount() {
	u.mu.Lock()
	u.unmounted = true
	u.loading = false
	u.mu.Unlock()
	u.posts.Unmount()
}

func (u *UserDetail) Target() *model.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.target == nil {
		return nil
	}
	t := *u.target
	return &t
}

func (u *UserDetail) Followers() []model.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]model.User(nil), u.followers...)
}

func (u *UserDetail) Following() []model.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]model.User(nil), u.following...)
}

// Relationship derives how the signed-in user relates to the target.
func (u *UserDetail) Relationship() visibility.Relationship {
	u.mu.Lock()
	defer u.mu.Unlock()
	return visibility.Derive(visibility.Input{
		Current:    u.deps.Session.CurrentUser(),
		Target:     u.target,
		Followers:  u.followers,
		Following:  u.following,
		ListsKnown: u.listsKnown,
	})
}

// Posts is empty whenever the relationship hides them, even if the server
// returned some.
func (u *UserDetail) Posts() []model.Post {
	if u.Target() == nil || u.Relationship().PostsHidden {
		return nil
	}
	return u.posts.Items()
}

func (u *UserDetail) Cards() []*PostCard {
	return u.cards.cards(u.Posts())
}

func (u *UserDetail) FollowBusy() bool { return u.follow.Busy() }

// ToggleFollow follows or unfollows the target, then reloads the follow lists and
// the posts. It does nothing on one's own page.
func (u *UserDetail) ToggleFollow(ctx context.Context) error {
	rel := u.Relationship()
	if u.Target() == nil || !rel.CanFollow() {
		return nil
	}
	return u.follow.Do(ctx, func(ctx context.Context) error {
		err := u.posts.Mutate(ctx, func(ctx context.Context) error {
			var err error
			if rel.Following() {
				err = u.deps.API.Follows.Unfollow(ctx, u.username)
			} else {
				err = u.deps.API.Follows.Follow(ctx, u.username)
			}
			if err != nil {
				return err
			}
			return u.reloadFollows(ctx)
		})
		if err != nil && !errors.Is(err, resource.ErrStale) {
			u.log.Warn("toggle follow failed", zap.String("username", u.username), zap.Error(err))
			return err
		}
		return nil
	})
}

// reloadFollows refreshes the follow lists under a new generation, superseding
// any Load in flight.
func (u *UserDetail) reloadFollows(ctx context.Context) error {
	u.mu.Lock()
	if u.unmounted {
		u.mu.Unlock()
		return resource.ErrStale
	}
	u.gen++
	gen := u.gen
	u.loading = false
	u.mu.Unlock()
	return u.loadFollows(ctx, gen)
}

func (u *UserDetail) ActiveTab() FollowTab {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tab
}

// ShowTab opens tab, or closes it when it is already open.
func (u *UserDetail) ShowTab(tab FollowTab) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.tab == tab {
		u.tab = TabNone
		return
	}
	u.tab = tab
}
