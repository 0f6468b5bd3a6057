package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	chatrepo "group_chat_service/internal/chat/repository"
	"group_chat_service/internal/member/domain"
	"group_chat_service/internal/member/repository"
	"group_chat_service/pkg/config"
	"group_chat_service/pkg/database"
	"group_chat_service/pkg/encrypt"
	"group_chat_service/pkg/logger"
	token "group_chat_service/pkg/token"
)

// MemberUseCase 這裡封裝了對外提供的應用服務
type MemberUseCase interface {
	Register(ctx context.Context, email, password string) error
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, memberID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error
	// Delete 刪除使用者並清掉聊天側的關聯：
	// 逐一退出 conversation(維持計數與歸零消滅)、移除投遞紀錄，
	// 已發送的訊息本體保留
	Delete(ctx context.Context, memberID string) error
}

type memberUseCase struct {
	memberRepo repository.MemberRepository
	convRepo   chatrepo.ConversationRepository
	msgRepo    chatrepo.MessageRepository
	sessionTTL time.Duration
	redisRepo  database.RedisRepository[domain.MemberSession]
}

// NewMemberUseCase 建立一個新的 MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	convRepo chatrepo.ConversationRepository,
	msgRepo chatrepo.MessageRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
) MemberUseCase {
	return &memberUseCase{
		memberRepo: memberRepo,
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		sessionTTL: sessionTTL,
		redisRepo:  redisRepo,
	}
}

// Register
func (m *memberUseCase) Register(ctx context.Context, email, password string) error {
	// 檢查 email 是否已存在
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return errors.New("email already exists")
	}

	if err := encrypt.ValidatePasswordStrength(password); err != nil {
		return err
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		logger.Log.Errorf("password err :", err)
		return err
	}

	member := domain.Member{
		MemberID:  uuid.New().String(),
		Email:     email,
		Password:  pw,
		Role:      string(token.RoleMember),
		CreatedAt: time.Now(),
	}

	logger.Log.Info(fmt.Sprintf("usecase Register : %s", member.Email))

	return m.memberRepo.CreateUser(ctx, &member)
}

// FindMember 尋找使用者
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// Login
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find!!!")
		return "", errors.New("user not found")
	}

	if err = member.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match!!!")
		return "", err
	}

	member.Status = domain.MemberStatusOnLine

	t, err := token.GenerateJWT(member.MemberID, member.Role, config.EnvConfig.MemberService)
	if err != nil {
		return "", err
	}
	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	m.redisRepo.Set(context.Background(), member.MemberID, session, m.sessionTTL)

	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return "", err
	}

	return t, nil
}

// Logout
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return err
	}
	logger.Log.Debug("logout", zap.String("member token info", fmt.Sprintf("%v", tokenInfo)))

	m.redisRepo.Del(context.Background(), tokenInfo.MemberID)

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: tokenInfo.MemberID,
		Status:   domain.MemberStatusOffLine,
	})
}

// ForceLogout
// 直接把該 memberID 下所有 session 都清除
func (m *memberUseCase) ForceLogout(ctx context.Context, memberID string) error {
	m.redisRepo.Del(context.Background(), memberID)

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: memberID,
		Status:   domain.MemberStatusOffLine,
	})
}

// CheckSessionTimeout
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("CheckSessionTimeout err :", zap.String("err", err.Error()))
		return true, err
	}

	ttl, err := m.redisRepo.GetTTL(context.Background(), tokenInfo.MemberID)
	if err != nil {
		return true, err
	}

	if ttl > 0 {
		return false, nil
	}
	return true, nil
}

// ReconnectSession 重新連線時延長 session
func (m *memberUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("ReconnectSession err :", zap.String("err", err.Error()))
		return err
	}

	m.redisRepo.ExtendTTL(context.Background(), tokenInfo.MemberID, m.sessionTTL)

	return nil
}

// Delete
func (m *memberUseCase) Delete(ctx context.Context, memberID string) error {
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &memberID}); err != nil {
		return err
	}

	// 先逐一退出 conversation，最後一人時 conversation 整筆消滅
	convs, err := m.convRepo.FindByMember(ctx, memberID)
	if err != nil {
		return err
	}
	for _, conv := range convs {
		if _, err := m.convRepo.RemoveMember(ctx, conv.ID, memberID); err != nil {
			return err
		}
	}

	// 移除投遞紀錄，訊息本體不動
	if err := m.msgRepo.ScrubRecipient(ctx, memberID); err != nil {
		return err
	}

	m.redisRepo.Del(context.Background(), memberID)

	return m.memberRepo.DeleteMember(ctx, memberID)
}
