package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// Connections is the followers / following / requests page.
type Connections struct {
	deps      Deps
	log       *zap.Logger
	action    resource.Guard
	followers *resource.List[model.User]
	following *resource.List[model.User]
	requests  *resource.List[model.FollowRequest]
	lists     resource.Group

	mu        sync.Mutex
	actionErr string
}

func NewConnections(d Deps) *Connections {
	c := &Connections{deps: d, log: d.logger("Connections")}
	c.followers = resource.NewList("followers", d.API.Follows.Followers, MsgConnectionsLoadFailed, c.log)
	c.following = resource.NewList("following", d.API.Follows.Following, MsgConnectionsLoadFailed, c.log)
	c.requests = resource.NewList("follow requests", func(ctx context.Context) ([]model.FollowRequest, error) {
		me, err := d.me()
		if err != nil {
			return nil, err
		}
		if !me.PrivateAccount {
			return nil, nil
		}
		return d.API.Follows.Requests(ctx)
	}, MsgConnectionsLoadFailed, c.log)
	c.lists = resource.Group{c.followers, c.following, c.requests}
	return c
}

// Load fetches both lists and, for private accounts, the pending requests.
func (c *Connections) Load(ctx context.Context) error {
	c.setActionErr("")
	return c.lists.Load(ctx)
}

func (c *Connections) Loading() bool { return c.lists.Loading() }
func (c *Connections) Unmount()      { c.lists.Unmount() }

// Err is the last failed action's message, else the load error.
func (c *Connections) Err() string {
	c.mu.Lock()
	msg := c.actionErr
	c.mu.Unlock()
	if msg != "" {
		return msg
	}
	return c.lists.Err()
}

func (c *Connections) Busy() bool { return c.action.Busy() }

func (c *Connections) Followers() []model.User         { return c.followers.Items() }
func (c *Connections) Following() []model.User         { return c.following.Items() }
func (c *Connections) Requests() []model.FollowRequest { return c.requests.Items() }

// Follow sends a follow (or a request, for private accounts). Blank input is ignored.
func (c *Connections) Follow(ctx context.Context, username string) error {
	username = model.NormalizeUsername(username)
	if username == "" {
		return nil
	}
	return c.run(ctx, "follow", username, MsgFollowFailed, func(ctx context.Context) error {
		return c.deps.API.Follows.Follow(ctx, username)
	})
}

func (c *Connections) Unfollow(ctx context.Context, username string) error {
	return c.run(ctx, "unfollow", username, MsgUnfollowFailed, func(ctx context.Context) error {
		return c.deps.API.Follows.Unfollow(ctx, username)
	})
}

func (c *Connections) Accept(ctx context.Context, username string) error {
	return c.run(ctx, "accept", username, MsgFollowRequestFailed, func(ctx context.Context) error {
		return c.deps.API.Follows.Accept(ctx, username)
	})
}

func (c *Connections) Reject(ctx context.Context, username string) error {
	return c.run(ctx, "reject", username, MsgFollowRequestFailed, func(ctx context.Context) error {
		return c.deps.API.Follows.Reject(ctx, username)
	})
}

// run performs one action, then reloads the page. A failure sets failMsg.
func (c *Connections) run(ctx context.Context, name, username, failMsg string, fn func(context.Context) error) error {
	c.setActionErr("")
	return c.action.Do(ctx, func(ctx context.Context) error {
		if err := c.lists.Mutate(ctx, fn); err != nil {
			c.log.Warn(name+" failed", zap.String("username", username), zap.Error(err))
			c.setActionErr(failMsg)
			return err
		}
		return nil
	})
}

func (c *Connections) setActionErr(msg string) {
	c.mu.Lock()
	c.actionErr = msg
	c.mu.Unlock()
}
