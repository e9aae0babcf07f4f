package model

// ChatSummary is one conversation in the inbox.
type ChatSummary struct {
	ChatID      int64  `json:"chatId"`
	Username    string `json:"username"`
	LastMessage string `json:"lastMessage,omitempty"`
}

// Message is append-only from the client's side.
type Message struct {
	Content string    `json:"content"`
	SentAt  Timestamp `json:"sentAt"`
	Sender  string    `json:"sender"`
}

// SendMessagePayload is the body of POST /chats/{username}/messages.
type SendMessagePayload struct {
	Content string `json:"content"`
}

func (p SendMessagePayload) Validate() error {
	if isBlank(p.Content) {
		return ErrMessageEmpty
	}
	return nil
}

// SendMessageResponse echoes the stored message.
type SendMessageResponse struct {
	ChatID  int64     `json:"chatId"`
	Content string    `json:"content"`
	SentAt  Timestamp `json:"sentAt"`
}

// FindChat returns the conversation with username, if any.
func FindChat(chats []ChatSummary, username string) (ChatSummary, bool) {
	for _, c := range chats {
		if c.Username == username {
			return c, true
		}
	}
	return ChatSummary{}, false
}
