package delivery

import "fmt"

// Record 是放上 queue 的投遞單位，只做傳輸用，不落地成實體
// Kafka message key = ConversationID，同一個 conversation 的投遞嚴格有序
type Record struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
	Timestamp      int64  `json:"timestamp"`
}

// ChannelFor 每個 conversation 一條 live channel
func ChannelFor(conversationID string) string {
	return fmt.Sprintf("chat:conversation:%s", conversationID)
}
