package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 測試 ResolveRecipients 排除 sender
func TestResolveRecipients(t *testing.T) {
	members := []string{"a", "b", "c"}

	recipients := ResolveRecipients(members, "b")

	assert.Equal(t, []string{"a", "c"}, recipients)
}

// 測試 sender 不在成員集時收件人為全部成員
func TestResolveRecipients_SenderNotMember(t *testing.T) {
	members := []string{"a", "b"}

	recipients := ResolveRecipients(members, "x")

	assert.Equal(t, []string{"a", "b"}, recipients)
}

// 測試回傳新 slice，成員集不被改動
func TestResolveRecipients_DoesNotMutateMembers(t *testing.T) {
	members := []string{"a", "b", "c"}

	_ = ResolveRecipients(members, "a")

	assert.Equal(t, []string{"a", "b", "c"}, members)
}

// 測試 1對1 conversation 只剩對方一個收件人
func TestResolveRecipients_TwoMembers(t *testing.T) {
	recipients := ResolveRecipients([]string{"a", "b"}, "a")

	assert.Equal(t, []string{"b"}, recipients)
}

func TestConversationHasMember(t *testing.T) {
	conv := Conversation{Members: []string{"a", "b"}}

	assert.True(t, conv.HasMember("a"))
	assert.False(t, conv.HasMember("c"))
}

func TestMessageRecipientIDs(t *testing.T) {
	msg := Message{Recipients: []Recipient{{MemberID: "a"}, {MemberID: "b"}}}

	assert.Equal(t, []string{"a", "b"}, msg.RecipientIDs())
}
