package devserver

import "errors"

// Domain errors returned by the store. Handlers map them to status codes.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrNotOwner           = errors.New("not the owner")
	ErrCannotFollowSelf   = errors.New("cannot follow yourself")
	ErrAlreadyFollowing   = errors.New("already following this user")
	ErrAlreadyRequested   = errors.New("follow request already sent")
	ErrNotFollowing       = errors.New("not following this user")
	ErrRequestNotFound    = errors.New("follow request not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrPrivateAccount     = errors.New("this account is private")
	ErrCannotMessageSelf  = errors.New("cannot message yourself")
)
