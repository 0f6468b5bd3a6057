package domain

import "time"

// Conversation definition chat conversation
// NumUsers 永遠等於 Members 的數量，成員歸零時整筆刪除
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	NumUsers  int       `json:"num_users"`
	Members   []string  `json:"members,omitempty"`
}

// HasMember check memberID in conversation member set
func (c *Conversation) HasMember(memberID string) bool {
	for _, m := range c.Members {
		if m == memberID {
			return true
		}
	}
	return false
}
