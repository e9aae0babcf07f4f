// Package controller holds the state behind each page of the client. Controllers
// own their loading flags and user-facing error messages; the underlying errors
// are logged and returned to the caller, never shown.
package controller

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ministagram/internal/api"
	"ministagram/internal/logger"
	"ministagram/internal/model"
	"ministagram/internal/session"
)

// User-facing messages.
const (
	MsgInvalidCredentials    = "Invalid credentials. Please try again."
	MsgAccountNotFound       = "Account not found. Would you like to create one?"
	MsgSignupFailed          = "Unable to create account. Please try again."
	MsgFeedLoadFailed        = "Unable to load your feed. Please refresh."
	MsgPostsLoadFailed       = "Unable to load posts. Please refresh."
	MsgOwnPostsLoadFailed    = "Unable to load your posts."
	MsgUserNotFound          = "User not found"
	MsgUserLoadFailed        = "Unable to load user profile."
	MsgUserPostsLoadFailed   = "Unable to load posts for this user."
	MsgConnectionsLoadFailed = "Unable to load connections. Please refresh."
	MsgFollowFailed          = "Unable to send follow request."
	MsgUnfollowFailed        = "Unable to unfollow this user right now."
	MsgFollowRequestFailed   = "Unable to update follow request."
	MsgCommentsLoadFailed    = "Unable to load comments."
	MsgCommentFailed         = "Unable to add comment. Please try again."
	MsgShareFailed           = "Unable to share post. Please try again."
	MsgMessagesLoadFailed    = "Unable to load messages. Please try again later."
	MsgSendFailed            = "Unable to send message. Please try again."
)

var (
	// ErrNotOwner is returned when deleting someone else's post.
	ErrNotOwner = errors.New("only the author can delete this post")
	// ErrNoConversation is returned by Chat.Send before a conversation is selected.
	ErrNoConversation = errors.New("no conversation selected")
)

// ImageUploader stores a local image and returns its public URL.
type ImageUploader interface {
	UploadFile(ctx context.Context, path string) (*model.UploadResult, error)
}

// Deps is what every controller is built from. Uploader may be nil when media
// uploads are not configured.
type Deps struct {
	API      *api.Client
	Session  *session.Manager
	Uploader ImageUploader
	Log      *zap.Logger
}

func (d Deps) logger(name string) *zap.Logger {
	return logger.OrNop(d.Log).Named(name)
}

// me returns the signed-in user, or the route guard's error.
func (d Deps) me() (*model.User, error) {
	return d.Session.RequireAuth()
}
