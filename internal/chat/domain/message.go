package domain

import "time"

// Message 表示一則聊天訊息
// Recipients 是發送當下的快照，之後的成員異動不會回頭改動它
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	Content        string      `json:"content"`
	SentAt         time.Time   `json:"sent_at"`
	Recipients     []Recipient `json:"recipients,omitempty"`
}

// Recipient 表示單一收件人的投遞紀錄
type Recipient struct {
	MemberID string     `json:"member_id"`
	Read     bool       `json:"read"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
}

// RecipientIDs list recipient member ids
func (m *Message) RecipientIDs() []string {
	ids := make([]string, 0, len(m.Recipients))
	for _, r := range m.Recipients {
		ids = append(ids, r.MemberID)
	}
	return ids
}

// ConversationUnreadInfo definition unread by conversation
type ConversationUnreadInfo struct {
	ConversationID      string `json:"conversation_id"`
	UnreadCount         int    `json:"unread_count"`
	LastUnreadTimeStamp int64  `json:"last_unread_timestamp"`
}
