package chat

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" validate:"required,gt=0"`
	Content     string `json:"content" validate:"required"`
}

// WSEvent is pushed to WebSocket clients.
type WSEvent struct {
	Type        string `json:"type"`
	Payload     any    `json:"payload,omitempty"`
	UnreadTotal int64  `json:"unread_total"`
}

const (
	EventConversations = "conversations"
	EventNewMessage    = "new_message"
	EventError         = "error"
)

// wsClientMessage is what clients may send over the socket.
type wsClientMessage struct {
	Type   string `json:"type"`
	UserID int64  `json:"user_id,omitempty"`
}
