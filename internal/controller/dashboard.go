package controller

import (
	"context"

	"go.uber.org/zap"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// Dashboard lists the signed-in user's own posts and hosts the composer.
type Dashboard struct {
	deps     Deps
	log      *zap.Logger
	posts    *resource.List[model.Post]
	cards    *postCards
	clearing resource.Guard
	composer *PostComposer
}

func NewDashboard(d Deps) *Dashboard {
	db := &Dashboard{deps: d, log: d.logger("Dashboard")}
	db.posts = resource.NewList("dashboard posts", d.API.Posts.ListMine, MsgPostsLoadFailed, db.log)
	db.cards = &postCards{deps: d, owner: db.posts}
	db.composer = NewPostComposer(d, func(_ context.Context, post model.Post) {
		db.posts.Prepend(post)
	})
	return db
}

func (db *Dashboard) Load(ctx context.Context) error { return db.posts.Load(ctx) }
func (db *Dashboard) Loading() bool                  { return db.posts.Loading() }
func (db *Dashboard) Err() string                    { return db.posts.Err() }
func (db *Dashboard) Unmount()                       { db.posts.Unmount() }

func (db *Dashboard) Posts() []model.Post     { return db.posts.Items() }
func (db *Dashboard) Cards() []*PostCard      { return db.cards.cards(db.posts.Items()) }
func (db *Dashboard) Composer() *PostComposer { return db.composer }
func (db *Dashboard) Clearing() bool          { return db.clearing.Busy() }

// DeleteAll removes every post of the signed-in user. It is a no-op on an empty
// list.
func (db *Dashboard) DeleteAll(ctx context.Context) error {
	if db.posts.Len() == 0 {
		return nil
	}
	return db.clearing.Do(ctx, func(ctx context.Context) error {
		if err := db.deps.API.Posts.DeleteAllMine(ctx); err != nil {
			db.log.Warn("delete all posts failed", zap.Error(err))
			return err
		}
		db.posts.Replace(nil)
		return nil
	})
}
