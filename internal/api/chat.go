package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ministagram/internal/model"
)

// ChatAPI covers direct messages under /chats.
type ChatAPI struct{ c *Client }

// ListChats returns the inbox.
func (a *ChatAPI) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	return getJSON[[]model.ChatSummary](ctx, a.c, "/chats")
}

// Messages returns the thread with username, oldest first.
func (a *ChatAPI) Messages(ctx context.Context, username string) ([]model.Message, error) {
	return getJSON[[]model.Message](ctx, a.c, "/chats/"+url.PathEscape(username)+"/messages")
}

func (a *ChatAPI) Send(ctx context.Context, username string, payload model.SendMessagePayload) (*model.SendMessageResponse, error) {
	resp, err := sendJSON[model.SendMessageResponse](ctx, a.c, http.MethodPost, "/chats/"+url.PathEscape(username)+"/messages", payload)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *ChatAPI) MarkSeen(ctx context.Context, chatID int64) error {
	return a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/chats/%d/seen", chatID), nil, nil)
}
