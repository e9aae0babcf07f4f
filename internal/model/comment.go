package model

import "fmt"

// Comment has no stable identifier on the wire.
type Comment struct {
	Username   string    `json:"username"`
	UploadedAt Timestamp `json:"uploadedAt"`
	Comment    string    `json:"comment"`
}

// Key identifies a comment inside one rendered list. Two identical comments are only
// told apart by their position.
func (c Comment) Key(index int) string {
	return fmt.Sprintf("%s-%d-%s", c.Username, index, c.UploadedAt.Key())
}

// CommentPayload is the body of POST /posts/{id}/comments.
type CommentPayload struct {
	Content string `json:"content"`
}

func (p CommentPayload) Validate() error {
	if isBlank(p.Content) {
		return ErrCommentEmpty
	}
	return nil
}
