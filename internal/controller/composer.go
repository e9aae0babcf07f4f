package controller

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// PostComposer is the "share something new" form.
type PostComposer struct {
	deps      Deps
	log       *zap.Logger
	guard     resource.Guard
	onCreated func(ctx context.Context, post model.Post)

	Caption  string
	ImageURL string

	FieldErrors  model.FieldErrors
	GeneralError string
}

// NewPostComposer builds a composer. onCreated runs after every successful share.
func NewPostComposer(d Deps, onCreated func(ctx context.Context, post model.Post)) *PostComposer {
	return &PostComposer{deps: d, log: d.logger("PostComposer"), onCreated: onCreated}
}

func (c *PostComposer) Submitting() bool { return c.guard.Busy() }

// Submit validates the caption and image URL, creates the post and clears the form.
func (c *PostComposer) Submit(ctx context.Context) (*model.Post, error) {
	var created *model.Post
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		post, err := c.submit(ctx)
		created = post
		return err
	})
	return created, err
}

// SubmitFile uploads the image at path and shares it with the current caption.
func (c *PostComposer) SubmitFile(ctx context.Context, path string) (*model.Post, error) {
	var created *model.Post
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		c.GeneralError = ""
		c.FieldErrors = nil
		if strings.TrimSpace(c.Caption) == "" {
			c.FieldErrors = model.FieldErrors{"caption": model.ErrCaptionRequired}
			return c.FieldErrors
		}
		if c.deps.Uploader == nil {
			c.GeneralError = MsgShareFailed
			return model.ErrMediaDisabled
		}

		res, err := c.deps.Uploader.UploadFile(ctx, path)
		if err != nil {
			c.log.Warn("image upload failed", zap.String("path", path), zap.Error(err))
			c.GeneralError = MsgShareFailed
			return err
		}
		c.ImageURL = res.URL

		post, err := c.submit(ctx)
		created = post
		return err
	})
	return created, err
}

func (c *PostComposer) submit(ctx context.Context) (*model.Post, error) {
	c.GeneralError = ""
	c.FieldErrors = nil

	payload := model.PostPayload{Caption: c.Caption, ImageURL: c.ImageURL}
	if err := payload.Validate(); err != nil {
		c.FieldErrors = asFieldErrors(err)
		return nil, err
	}

	post, err := c.deps.API.Posts.Create(ctx, payload)
	if err != nil {
		c.log.Warn("create post failed", zap.Error(err))
		c.GeneralError = MsgShareFailed
		return nil, err
	}

	c.Caption, c.ImageURL = "", ""
	if c.onCreated != nil {
		c.onCreated(ctx, *post)
	}
	return post, nil
}
