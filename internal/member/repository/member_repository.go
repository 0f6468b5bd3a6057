package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"group_chat_service/internal/member/domain"
	"group_chat_service/pkg/errprocess"
)

// MemberRepository definition get Member info
type MemberRepository interface {
	AutoMigrate() error
	CreateUser(ctx context.Context, member *domain.Member) error
	UpdateMemberStatus(ctx context.Context, member *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	DeleteMember(ctx context.Context, memberID string) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Member{})
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) UpdateMemberStatus(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("id = ?", member.MemberID).
		Update("status", member.Status).Error
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	query := r.db.WithContext(ctx).Model(&domain.Member{})
	if memberQuery.Email != nil {
		query = query.Where("email = ?", *memberQuery.Email)
	}
	if memberQuery.MemberID != nil {
		query = query.Where("id = ?", *memberQuery.MemberID)
	}

	var member domain.Member
	if err := query.First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errprocess.NotFound("member")
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) DeleteMember(ctx context.Context, memberID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", memberID).Delete(&domain.Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errprocess.NotFound("member " + memberID)
	}
	return nil
}
