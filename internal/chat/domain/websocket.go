package domain

// Action websocket request action
type Action string

const (
	// CreateConversation websocket action create_conversation
	CreateConversation Action = "create_conversation"
	// AddMember websocket action add_member
	AddMember Action = "add_member"
	// LeaveConversation websocket action leave_conversation
	LeaveConversation Action = "leave_conversation"

	// EnterConversation websocket action enter_conversation
	EnterConversation Action = "enter_conversation"
	// ExitConversation websocket action exit_conversation
	ExitConversation Action = "exit_conversation"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// ReadMessage websocket action read_message
	ReadMessage Action = "read_message"

	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// NotifyMessage websocket action notify_message
	NotifyMessage Action = "notify_message"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
	MemberID       string `json:"member_id"`
	Content        string `json:"content"`
	MessageID      string `json:"message_id"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
