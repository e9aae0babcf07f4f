package controller

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ministagram/internal/model"
	"ministagram/internal/resource"
)

// ChatState is where the messages page is.
type ChatState int

const (
	NoConversationSelected ChatState = iota
	ConversationLoading
	ConversationLoaded
)

func (s ChatState) String() string {
	switch s {
	case ConversationLoading:
		return "loading"
	case ConversationLoaded:
		return "loaded"
	default:
		return "no conversation"
	}
}

// Chat is the direct messages page: the inbox plus one open conversation.
type Chat struct {
	deps    Deps
	log     *zap.Logger
	sending resource.Guard

	mu        sync.Mutex
	state     ChatState
	username  string
	chats     []model.ChatSummary
	messages  []model.Message
	chatID    int64
	err       string
	gen       uint64
	unmounted bool
}

func NewChat(d Deps) *Chat {
	return &Chat{deps: d, log: d.logger("Chat")}
}

// Load refreshes the inbox and, when a conversation is selected, its thread. The
// thread is marked seen once its chat id is known.
func (c *Chat) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return resource.ErrStale
	}
	c.gen++
	gen := c.gen
	username := c.username
	if username != "" {
		c.state = ConversationLoading
	}
	c.err = ""
	c.mu.Unlock()

	chats, err := c.deps.API.Chat.ListChats(ctx)
	var messages []model.Message
	if err == nil && username != "" {
		messages, err = c.deps.API.Chat.Messages(ctx, username)
	}

	c.mu.Lock()
	if c.unmounted || gen != c.gen {
		c.mu.Unlock()
		return resource.ErrStale
	}
	if err != nil {
		c.log.Warn("load messages failed", zap.String("username", username), zap.Error(err))
		c.err = MsgMessagesLoadFailed
		if username != "" {
			c.state = ConversationLoaded
		}
		c.mu.Unlock()
		return err
	}
	c.chats = chats
	var chatID int64
	if username != "" {
		c.messages = messages
		if summary, ok := model.FindChat(chats, username); ok {
			chatID = summary.ChatID
		}
		c.chatID = chatID
		c.state = ConversationLoaded
	}
	c.mu.Unlock()

	if chatID != 0 {
		c.markSeen(ctx, chatID)
	}
	return nil
}

// Select opens an existing conversation.
func (c *Chat) Select(ctx context.Context, username string) error {
	username = model.NormalizeUsername(username)
	if username == "" {
		return nil
	}
	c.mu.Lock()
	c.username = username
	c.messages = nil
	c.chatID = 0
	c.mu.Unlock()
	return c.Load(ctx)
}

// StartNew opens a conversation with someone not yet in the inbox. The chat is
// created by the first message sent.
func (c *Chat) StartNew(ctx context.Context, username string) error {
	return c.Select(ctx, username)
}

// Send posts content to the open conversation and appends the echoed message.
func (c *Chat) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.ErrMessageEmpty
	}
	c.mu.Lock()
	username := c.username
	c.mu.Unlock()
	if username == "" {
		return ErrNoConversation
	}
	me, err := c.deps.me()
	if err != nil {
		return err
	}

	return c.sending.Do(ctx, func(ctx context.Context) error {
		resp, err := c.deps.API.Chat.Send(ctx, username, model.SendMessagePayload{Content: content})
		if err != nil {
			c.log.Warn("send message failed", zap.String("username", username), zap.Error(err))
			c.mu.Lock()
			c.err = MsgSendFailed
			c.mu.Unlock()
			return err
		}

		c.mu.Lock()
		if c.unmounted || c.username != username {
			c.mu.Unlock()
			return nil
		}
		c.messages = append(c.messages, model.Message{Content: resp.Content, SentAt: resp.SentAt, Sender: me.Username})
		newChat := resp.ChatID != 0 && resp.ChatID != c.chatID
		if resp.ChatID != 0 {
			c.chatID = resp.ChatID
		}
		c.err = ""
		c.mu.Unlock()

		if newChat {
			c.markSeen(ctx, resp.ChatID)
		}
		return nil
	})
}

// Unmount drops every in-flight and future load.
func (c *Chat) Unmount() {
	c.mu.Lock()
	c.unmounted = true
	c.mu.Unlock()
}

func (c *Chat) markSeen(ctx context.Context, chatID int64) {
	if err := c.deps.API.Chat.MarkSeen(ctx, chatID); err != nil {
		c.log.Debug("mark seen failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// IsOwn reports whether msg was sent by the signed-in user.
func (c *Chat) IsOwn(msg model.Message) bool {
	me := c.deps.Session.CurrentUser()
	return me != nil && msg.Sender == me.Username
}

func (c *Chat) Sending() bool { return c.sending.Busy() }

func (c *Chat) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Chat) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Chat) ChatID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatID
}

func (c *Chat) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Chat) Chats() []model.ChatSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatSummary(nil), c.chats...)
}

func (c *Chat) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Message(nil), c.messages...)
}
