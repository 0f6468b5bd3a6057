package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/pkg/errprocess"
	"group_chat_service/pkg/logger"
)

func init() {
	logger.SetNewNop()
}

// 測試 Create
func TestConversationUseCase_Create(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New().String()
	otherID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("MemberExists", ctx, otherID).Return(true, nil)
	mockConvRepo.On("Create", ctx, mock.MatchedBy(func(conv *domain.Conversation) bool {
		return len(conv.Members) == 2 && conv.HasMember(creatorID) && conv.HasMember(otherID)
	})).Return(nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	convID, err := uc.Create(ctx, creatorID, otherID)

	assert.NoError(t, err)
	assert.NotEmpty(t, convID)

	mockConvRepo.AssertExpectations(t)
}

// 測試 Create 不可和自己建 conversation
func TestConversationUseCase_Create_Self(t *testing.T) {
	ctx := context.Background()
	memberID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	_, err := uc.Create(ctx, memberID, memberID)

	assert.ErrorIs(t, err, errprocess.ErrInvalidArgument)
	mockConvRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 測試 Create 對方不存在
func TestConversationUseCase_Create_MemberNotFound(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New().String()
	otherID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("MemberExists", ctx, otherID).Return(false, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	_, err := uc.Create(ctx, creatorID, otherID)

	assert.ErrorIs(t, err, errprocess.ErrNotFound)
	mockConvRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 測試 AddMember
func TestConversationUseCase_AddMember(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()
	actorID := uuid.New().String()
	newID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	conv := &domain.Conversation{
		ID:      convID,
		Members: []string{actorID, "member-2"},
	}
	mockConvRepo.On("FindByID", ctx, convID).Return(conv, nil)
	mockConvRepo.On("MemberExists", ctx, newID).Return(true, nil)
	mockConvRepo.On("AddMember", ctx, convID, newID).Return(true, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.AddMember(ctx, convID, actorID, newID)

	assert.NoError(t, err)
	mockConvRepo.AssertExpectations(t)
}

// 測試 AddMember 操作者不在 conversation 內
func TestConversationUseCase_AddMember_ActorNotInConversation(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()
	actorID := uuid.New().String()
	newID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	conv := &domain.Conversation{
		ID:      convID,
		Members: []string{"member-1", "member-2"},
	}
	mockConvRepo.On("FindByID", ctx, convID).Return(conv, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.AddMember(ctx, convID, actorID, newID)

	assert.ErrorIs(t, err, errprocess.ErrUnauthorized)
	mockConvRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

// 測試 AddMember 對象已在房內時為 no-op
func TestConversationUseCase_AddMember_AlreadyMember(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()
	actorID := uuid.New().String()
	existingID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	conv := &domain.Conversation{
		ID:      convID,
		Members: []string{actorID, existingID},
	}
	mockConvRepo.On("FindByID", ctx, convID).Return(conv, nil)
	mockConvRepo.On("MemberExists", ctx, existingID).Return(true, nil)
	mockConvRepo.On("AddMember", ctx, convID, existingID).Return(false, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.AddMember(ctx, convID, actorID, existingID)

	assert.NoError(t, err)
	mockConvRepo.AssertExpectations(t)
}

// 測試 Leave
func TestConversationUseCase_Leave(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()
	memberID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("RemoveMember", ctx, convID, memberID).Return(1, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.Leave(ctx, convID, memberID)

	assert.NoError(t, err)
	mockConvRepo.AssertExpectations(t)
}

// 測試 Remove admin 整筆刪除 conversation，不是只踢成員
func TestConversationUseCase_Remove(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("Delete", ctx, convID).Return(nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.Remove(ctx, convID, "admin-1", true)

	assert.NoError(t, err)
	mockConvRepo.AssertExpectations(t)
	mockConvRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

// 測試 Remove 非 admin 不可刪除 conversation
func TestConversationUseCase_Remove_NotAdmin(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.Remove(ctx, convID, "actor", false)

	assert.ErrorIs(t, err, errprocess.ErrUnauthorized)
	mockConvRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// 測試 Kick admin 踢出單一成員
func TestConversationUseCase_Kick(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("RemoveMember", ctx, convID, "target").Return(1, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.Kick(ctx, convID, "admin-1", "target", true)

	assert.NoError(t, err)
	mockConvRepo.AssertExpectations(t)
	mockConvRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// 測試 Kick 非 admin 不可踢人
func TestConversationUseCase_Kick_NotAdmin(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	err := uc.Kick(ctx, convID, "actor", "target", false)

	assert.ErrorIs(t, err, errprocess.ErrUnauthorized)
	mockConvRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

// 測試 Find 非成員不可見
func TestConversationUseCase_Find_NotMember(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	conv := &domain.Conversation{
		ID:      convID,
		Members: []string{"member-1", "member-2"},
	}
	mockConvRepo.On("FindByID", ctx, convID).Return(conv, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	_, err := uc.Find(ctx, convID, "outsider", false)

	assert.ErrorIs(t, err, errprocess.ErrUnauthorized)
}

// 測試 Find admin 可見所有 conversation
func TestConversationUseCase_Find_Admin(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockMsgRepo := new(MockMessageRepository)

	conv := &domain.Conversation{
		ID:      convID,
		Members: []string{"member-1", "member-2"},
	}
	mockConvRepo.On("FindByID", ctx, convID).Return(conv, nil)

	uc := NewConversationUseCase(mockConvRepo, mockMsgRepo)
	got, err := uc.Find(ctx, convID, "admin-1", true)

	assert.NoError(t, err)
	assert.Equal(t, conv, got)
}
