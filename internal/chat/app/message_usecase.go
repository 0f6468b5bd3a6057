package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/internal/chat/repository"
	"group_chat_service/internal/delivery"
	"group_chat_service/pkg/logger"
)

// SendMessageUseCase 負責處理聊天訊息
type SendMessageUseCase struct {
	msgRepo  repository.MessageRepository
	producer delivery.Producer
}

// NewSendMessageUseCase init create message use case
func NewSendMessageUseCase(m repository.MessageRepository, p delivery.Producer) *SendMessageUseCase {
	return &SendMessageUseCase{
		msgRepo:  m,
		producer: p,
	}
}

// Execute send message
// 寫入在單一交易內完成，之後才丟進 delivery queue
// queue 投遞失敗只記 log，訊息本體不回滾
func (uc *SendMessageUseCase) Execute(ctx context.Context, conversationID, senderID, content string) (string, error) {
	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		SentAt:         time.Now(),
	}

	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		return "", err
	}

	if uc.producer != nil {
		rec := delivery.Record{
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			SenderID:       msg.SenderID,
			Content:        msg.Content,
			Timestamp:      msg.SentAt.Unix(),
		}
		if err := uc.producer.Publish(ctx, rec); err != nil {
			logger.Log.Error("delivery publish err :", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	return msg.ID, nil
}

// MarkRead - 已讀
func (uc *SendMessageUseCase) MarkRead(ctx context.Context, messageID, memberID string) error {
	return uc.msgRepo.MarkRead(ctx, memberID, messageID)
}

// GetCountUnreadMessages - get member all conversation un read message
func (uc *SendMessageUseCase) GetCountUnreadMessages(ctx context.Context, memberID string) ([]domain.ConversationUnreadInfo, error) {
	return uc.msgRepo.CountUnreadByConversation(ctx, memberID)
}

// Find get message by id
func (uc *SendMessageUseCase) Find(ctx context.Context, v repository.Visibility, messageID string) (*domain.Message, error) {
	return uc.msgRepo.FindByID(ctx, v, messageID)
}

// ListVisible get 可見範圍內的所有訊息
func (uc *SendMessageUseCase) ListVisible(ctx context.Context, v repository.Visibility) ([]domain.Message, error) {
	return uc.msgRepo.FindBySenderOrRecipient(ctx, v)
}

// Search 依內容子字串搜尋可見訊息
func (uc *SendMessageUseCase) Search(ctx context.Context, v repository.Visibility, substring string) ([]domain.Message, error) {
	return uc.msgRepo.SearchContent(ctx, v, substring)
}

// ListByDateRange 依時間區間搜尋可見訊息
func (uc *SendMessageUseCase) ListByDateRange(ctx context.Context, v repository.Visibility, from, to time.Time) ([]domain.Message, error) {
	return uc.msgRepo.FindByDateRange(ctx, v, from, to)
}

// ListUnread get member 尚未讀的訊息
func (uc *SendMessageUseCase) ListUnread(ctx context.Context, v repository.Visibility) ([]domain.Message, error) {
	return uc.msgRepo.FindUnread(ctx, v)
}
