package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/internal/chat/repository"
	"group_chat_service/pkg/errprocess"
)

// ConversationUseCase - conversation 的成員管理
type ConversationUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(c repository.ConversationRepository, m repository.MessageRepository) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo: c,
		msgRepo:  m,
	}
}

// Create 建立 1對1 conversation，雙方都成為成員
func (uc *ConversationUseCase) Create(ctx context.Context, creatorID, otherMemberID string) (string, error) {
	if creatorID == otherMemberID {
		return "", errprocess.Invalid("cannot create conversation with yourself")
	}

	exists, err := uc.convRepo.MemberExists(ctx, otherMemberID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errprocess.NotFound("member " + otherMemberID)
	}

	conv := &domain.Conversation{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Members:   []string{creatorID, otherMemberID},
	}
	if err := uc.convRepo.Create(ctx, conv); err != nil {
		return "", err
	}
	return conv.ID, nil
}

// AddMember 把新成員加進既有 conversation，操作者必須已是成員
// 對象已在房內時為 no-op
func (uc *ConversationUseCase) AddMember(ctx context.Context, conversationID, actorID, newMemberID string) error {
	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return errprocess.NotFound("conversation " + conversationID)
	}
	if !conv.HasMember(actorID) {
		return errprocess.Unauthorized("member " + actorID + " is not in conversation")
	}

	exists, err := uc.convRepo.MemberExists(ctx, newMemberID)
	if err != nil {
		return err
	}
	if !exists {
		return errprocess.NotFound("member " + newMemberID)
	}

	_, err = uc.convRepo.AddMember(ctx, conversationID, newMemberID)
	return err
}

// Leave 成員自行離開，最後一人離開時 conversation 整筆消滅
func (uc *ConversationUseCase) Leave(ctx context.Context, conversationID, memberID string) error {
	_, err := uc.convRepo.RemoveMember(ctx, conversationID, memberID)
	return err
}

// Remove admin 整筆刪除 conversation，訊息一併 cascade 消滅
func (uc *ConversationUseCase) Remove(ctx context.Context, conversationID, actorID string, actorAdmin bool) error {
	if !actorAdmin {
		return errprocess.Unauthorized("member " + actorID + " is not admin")
	}
	return uc.convRepo.Delete(ctx, conversationID)
}

// Kick admin 將單一成員踢出 conversation
func (uc *ConversationUseCase) Kick(ctx context.Context, conversationID, actorID, targetID string, actorAdmin bool) error {
	if !actorAdmin {
		return errprocess.Unauthorized("member " + actorID + " is not admin")
	}
	_, err := uc.convRepo.RemoveMember(ctx, conversationID, targetID)
	return err
}

// Find get conversation by id，非成員且非 admin 不可見
func (uc *ConversationUseCase) Find(ctx context.Context, conversationID, viewerID string, viewerAdmin bool) (*domain.Conversation, error) {
	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errprocess.NotFound("conversation " + conversationID)
	}
	if !viewerAdmin && !conv.HasMember(viewerID) {
		return nil, errprocess.Unauthorized("member " + viewerID + " is not in conversation")
	}
	return conv, nil
}

// ListByMember get member 參與的所有 conversation
func (uc *ConversationUseCase) ListByMember(ctx context.Context, memberID string) ([]domain.Conversation, error) {
	return uc.convRepo.FindByMember(ctx, memberID)
}

// ListByMemberSince get member 在指定時間後建立的 conversation
func (uc *ConversationUseCase) ListByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domain.Conversation, error) {
	return uc.convRepo.FindByMemberSince(ctx, memberID, since)
}

// ListShared get 兩個 member 同時參與的 conversation
func (uc *ConversationUseCase) ListShared(ctx context.Context, memberA, memberB string) ([]domain.Conversation, error) {
	return uc.convRepo.FindShared(ctx, memberA, memberB)
}

// History get conversation 在指定時間前的訊息，進房補歷史用
func (uc *ConversationUseCase) History(ctx context.Context, v repository.Visibility, conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.msgRepo.FindByConversationBefore(ctx, v, conversationID, before, limit)
}
