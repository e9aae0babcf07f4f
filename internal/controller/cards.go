package controller

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// =============================================================================
// Comments
// =============================================================================

// CommentsPanel is the expandable comment thread under a post. parent, when set,
// is reloaded after a comment is added so counts shown beside the post follow.
type CommentsPanel struct {
	deps   Deps
	log    *zap.Logger
	postID int64
	list   *resource.List[model.Comment]
	guard  resource.Guard
	parent resource.Reloader

	mu        sync.Mutex
	open      bool
	submitErr string
}

func newCommentsPanel(d Deps, postID int64, parent resource.Reloader) *CommentsPanel {
	log := d.logger("Comments")
	return &CommentsPanel{
		deps:   d,
		log:    log,
		postID: postID,
		parent: parent,
		list: resource.NewList("comments", func(ctx context.Context) ([]model.Comment, error) {
			return d.API.Comments.ListByPost(ctx, postID)
		}, MsgCommentsLoadFailed, log),
	}
}

func (p *CommentsPanel) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Toggle opens or closes the panel; opening loads the thread.
func (p *CommentsPanel) Toggle(ctx context.Context) error {
	p.mu.Lock()
	p.open = !p.open
	open := p.open
	p.mu.Unlock()
	if !open {
		return nil
	}
	return p.list.Load(ctx)
}

func (p *CommentsPanel) Comments() []model.Comment { return p.list.Items() }
func (p *CommentsPanel) Loading() bool             { return p.list.Loading() }

// Err is the message of the last failed submit, or of the last failed load.
func (p *CommentsPanel) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != "" {
		return p.submitErr
	}
	return p.list.Err()
}

func (p *CommentsPanel) Submitting() bool { return p.guard.Busy() }

// Submit posts the trimmed comment. Whitespace-only input is rejected without a
// request.
func (p *CommentsPanel) Submit(ctx context.Context, content string) error {
	p.setError("")
	content = strings.TrimSpace(content)
	if content == "" {
		p.setError(model.ErrCommentEmpty.Error())
		return model.ErrCommentEmpty
	}
	return p.guard.Do(ctx, func(ctx context.Context) error {
		err := p.list.Mutate(ctx, func(ctx context.Context) error {
			_, err := p.deps.API.Comments.Create(ctx, p.postID, model.CommentPayload{Content: content})
			return err
		})
		if err != nil {
			p.log.Warn("add comment failed", zap.Int64("post_id", p.postID), zap.Error(err))
			p.setError(MsgCommentFailed)
			return err
		}
		reload(ctx, p.log, p.parent)
		return nil
	})
}

func (p *CommentsPanel) setError(msg string) {
	p.mu.Lock()
	p.submitErr = msg
	p.mu.Unlock()
}

// =============================================================================
// PostCard
// =============================================================================

// PostCard is one Post with its like button, delete button and comments. owner is
// the list the post was loaded from, or nil.
type PostCard struct {
	deps     Deps
	log      *zap.Logger
	owner    resource.Reloader
	like     *resource.Toggle
	deleting resource.Guard
	comments *CommentsPanel

	mu   sync.Mutex
	post model.Post
}

func NewPostCard(d Deps, post model.Post, owner resource.Reloader) *PostCard {
	c := &PostCard{
		deps:     d,
		log:      d.logger("PostCard"),
		owner:    owner,
		comments: newCommentsPanel(d, post.ID, nil),
		post:     post,
	}
	c.like = resource.NewToggle(post.LikedBy(c.myUsername()), post.LikeCount())
	return c
}

func (c *PostCard) myUsername() string {
	if me := c.deps.Session.CurrentUser(); me != nil {
		return me.Username
	}
	return ""
}

func (c *PostCard) Post() model.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.post
}

// Liked and LikeCount reflect the optimistic state.
func (c *PostCard) Liked() bool {
	on, _ := c.like.State()
	return on
}

func (c *PostCard) LikeCount() int {
	_, n := c.like.State()
	return n
}

// CanDelete is true only on the signed-in user's own posts.
func (c *PostCard) CanDelete() bool {
	me := c.deps.Session.CurrentUser()
	return me != nil && me.ID == c.Post().User.ID
}

func (c *PostCard) Comments() *CommentsPanel { return c.comments }

// ToggleLike flips the like immediately, calls like or unlike, and asks the owner
// to refresh. A failed call puts the previous state back.
func (c *PostCard) ToggleLike(ctx context.Context) error {
	postID := c.Post().ID
	err := c.like.Flip(ctx, func(ctx context.Context, liked bool) error {
		return c.deps.API.Posts.SetLiked(ctx, postID, liked)
	})
	if err != nil {
		c.log.Warn("like toggle failed", zap.Int64("post_id", postID), zap.Error(err))
		return err
	}

	liked, _ := c.like.State()
	c.mu.Lock()
	c.post = c.post.WithLike(c.myUsername(), liked)
	c.mu.Unlock()
	reload(ctx, c.log, c.owner)
	return nil
}

// Delete removes the post; only the author may.
func (c *PostCard) Delete(ctx context.Context) error {
	if !c.CanDelete() {
		return ErrNotOwner
	}
	return c.deleting.Do(ctx, func(ctx context.Context) error {
		postID := c.Post().ID
		err := mutate(ctx, c.owner, func(ctx context.Context) error {
			return c.deps.API.Posts.Delete(ctx, postID)
		})
		if err != nil {
			c.log.Warn("delete post failed", zap.Int64("post_id", postID), zap.Error(err))
		}
		return err
	})
}

func (c *PostCard) Deleting() bool { return c.deleting.Busy() }

// sync takes server state after the owner reloaded.
func (c *PostCard) sync(post model.Post) {
	c.mu.Lock()
	c.post = post
	c.mu.Unlock()
	c.like.Reset(post.LikedBy(c.myUsername()), post.LikeCount())
}

// reload refreshes owner after an action; failures only reach the owner's Err.
func reload(ctx context.Context, log *zap.Logger, owner resource.Reloader) {
	if owner == nil {
		return
	}
	if err := owner.Load(ctx); err != nil {
		log.Debug("refresh after action failed", zap.Error(err))
	}
}

// mutate runs fn through owner so the owner reloads on success.
func mutate(ctx context.Context, owner resource.Reloader, fn func(ctx context.Context) error) error {
	if owner == nil {
		return fn(ctx)
	}
	return owner.Mutate(ctx, fn)
}

// postCards keeps one PostCard per post across reloads so open comment panels
// survive a refresh.
type postCards struct {
	deps  Deps
	owner resource.Reloader

	mu   sync.Mutex
	byID map[int64]*PostCard
}

func (pc *postCards) cards(posts []model.Post) []*PostCard {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	next := make(map[int64]*PostCard, len(posts))
	out := make([]*PostCard, 0, len(posts))
	for _, p := range posts {
		card, ok := pc.byID[p.ID]
		if ok {
			card.sync(p)
		} else {
			card = NewPostCard(pc.deps, p, pc.owner)
		}
		next[p.ID] = card
		out = append(out, card)
	}
	pc.byID = next
	return out
}

// =============================================================================
// FeedCard
// =============================================================================

// FeedCard is a PostCard over a FeedItem: counts come from the server and the
// liked flag is likedByYou.
type FeedCard struct {
	deps     Deps
	log      *zap.Logger
	owner    resource.Reloader
	like     *resource.Toggle
	comments *CommentsPanel

	mu   sync.Mutex
	item model.FeedItem
}

func NewFeedCard(d Deps, item model.FeedItem, owner resource.Reloader) *FeedCard {
	return &FeedCard{
		deps:     d,
		log:      d.logger("FeedCard"),
		owner:    owner,
		like:     resource.NewToggle(item.LikedByYou, item.NoOfLikes),
		comments: newCommentsPanel(d, item.PostID, owner),
		item:     item,
	}
}

func (c *FeedCard) Item() model.FeedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.item
}

func (c *FeedCard) Liked() bool {
	on, _ := c.like.State()
	return on
}

func (c *FeedCard) LikeCount() int {
	_, n := c.like.State()
	return n
}

func (c *FeedCard) Comments() *CommentsPanel { return c.comments }

// ToggleLike behaves like PostCard.ToggleLike.
func (c *FeedCard) ToggleLike(ctx context.Context) error {
	postID := c.Item().PostID
	err := c.like.Flip(ctx, func(ctx context.Context, liked bool) error {
		return c.deps.API.Posts.SetLiked(ctx, postID, liked)
	})
	if err != nil {
		c.log.Warn("like toggle failed", zap.Int64("post_id", postID), zap.Error(err))
		return err
	}
	reload(ctx, c.log, c.owner)
	return nil
}

func (c *FeedCard) sync(item model.FeedItem) {
	c.mu.Lock()
	c.item = item
	c.mu.Unlock()
	c.like.Reset(item.LikedByYou, item.NoOfLikes)
}
