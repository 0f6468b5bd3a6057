package app

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/internal/chat/repository"
	"group_chat_service/internal/delivery"
)

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// Create moke create conversation
func (m *MockConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// FindByID moke find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddMember moke add member
func (m *MockConversationRepository) AddMember(ctx context.Context, conversationID, memberID string) (bool, error) {
	args := m.Called(ctx, conversationID, memberID)
	return args.Bool(0), args.Error(1)
}

// RemoveMember moke remove member
func (m *MockConversationRepository) RemoveMember(ctx context.Context, conversationID, memberID string) (int, error) {
	args := m.Called(ctx, conversationID, memberID)
	return args.Int(0), args.Error(1)
}

// Delete moke delete conversation
func (m *MockConversationRepository) Delete(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

// Members moke get member list
func (m *MockConversationRepository) Members(ctx context.Context, conversationID string) ([]string, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByMember moke find conversations by member
func (m *MockConversationRepository) FindByMember(ctx context.Context, memberID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByMemberSince moke find conversations by member since
func (m *MockConversationRepository) FindByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domain.Conversation, error) {
	args := m.Called(ctx, memberID, since)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindShared moke find shared conversations
func (m *MockConversationRepository) FindShared(ctx context.Context, memberA, memberB string) ([]domain.Conversation, error) {
	args := m.Called(ctx, memberA, memberB)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// MemberExists moke member exists
func (m *MockConversationRepository) MemberExists(ctx context.Context, memberID string) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Create moke create message
func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID moke find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, v repository.Visibility, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, v, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindBySenderOrRecipient moke find visible messages
func (m *MockMessageRepository) FindBySenderOrRecipient(ctx context.Context, v repository.Visibility) ([]domain.Message, error) {
	args := m.Called(ctx, v)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchContent moke search by content
func (m *MockMessageRepository) SearchContent(ctx context.Context, v repository.Visibility, substring string) ([]domain.Message, error) {
	args := m.Called(ctx, v, substring)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByDateRange moke search by date range
func (m *MockMessageRepository) FindByDateRange(ctx context.Context, v repository.Visibility, from, to time.Time) ([]domain.Message, error) {
	args := m.Called(ctx, v, from, to)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindUnread moke find unread messages
func (m *MockMessageRepository) FindUnread(ctx context.Context, v repository.Visibility) ([]domain.Message, error) {
	args := m.Called(ctx, v)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByConversationBefore moke find history
func (m *MockMessageRepository) FindByConversationBefore(ctx context.Context, v repository.Visibility, conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, v, conversationID, before, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountUnreadByConversation moke get count unread by member id
func (m *MockMessageRepository) CountUnreadByConversation(ctx context.Context, memberID string) ([]domain.ConversationUnreadInfo, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.ConversationUnreadInfo), args.Error(1)
}

// MarkRead moke mark read
func (m *MockMessageRepository) MarkRead(ctx context.Context, memberID, messageID string) error {
	args := m.Called(ctx, memberID, messageID)
	return args.Error(0)
}

// RecipientIDs moke recipient ids
func (m *MockMessageRepository) RecipientIDs(ctx context.Context, messageID string) ([]string, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// ScrubRecipient moke scrub recipient
func (m *MockMessageRepository) ScrubRecipient(ctx context.Context, memberID string) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}

// MockProducer Mock delivery Producer
type MockProducer struct {
	mock.Mock
}

// Publish moke publish delivery record
func (m *MockProducer) Publish(ctx context.Context, rec delivery.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockPubSub Mock RedisPubSub
type MockPubSub struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockPubSub) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}

// Subscribe moke subscriber
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}
