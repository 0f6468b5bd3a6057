package domain

import (
	"time"

	"group_chat_service/pkg/encrypt"
)

// MemberStatus 用來表示使用者狀態
type MemberStatus int

// 状态: 0=offline, 1=online, 2=ban
const (
	// MemberStatusOffLine 用來表示使用者狀態為離線
	MemberStatusOffLine MemberStatus = iota
	// MemberStatusOnLine 用來表示使用者狀態為上線
	MemberStatusOnLine
	// MemberStatusBan 用來表示使用者狀態為封鎖
	MemberStatusBan
)

// Member 用來表示使用者
// id 與 conversation_members、message_recipients 的 member_id 對應
type Member struct {
	MemberID  string `gorm:"column:id;primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	Password  string
	Role      string
	Status    MemberStatus
	CreatedAt time.Time
}

// TableName 對應 chat service 讀的同一張表
func (Member) TableName() string {
	return "members"
}

// MemberSession 用來表示使用者的 Session
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch 密碼驗證
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// IsExpired 檢查 Session 是否已過期
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	MemberID *string
	Email    *string
}
