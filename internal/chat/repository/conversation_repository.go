package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/pkg/errprocess"
)

// ConversationRepository definition conversation 與 membership 關係的存取
// 同一個 conversation 的併發異動靠 row lock 序列化
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	// AddMember 已是成員時為 no-op (added=false)，計數器只在實際插入時遞增
	AddMember(ctx context.Context, conversationID, memberID string) (added bool, err error)
	// RemoveMember 移除雙向關係並回傳剩餘人數，歸零時整筆刪除（訊息 cascade）
	RemoveMember(ctx context.Context, conversationID, memberID string) (remaining int, err error)
	Delete(ctx context.Context, conversationID string) error
	Members(ctx context.Context, conversationID string) ([]string, error)
	FindByMember(ctx context.Context, memberID string) ([]domain.Conversation, error)
	FindByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domain.Conversation, error)
	FindShared(ctx context.Context, memberA, memberB string) ([]domain.Conversation, error)
	// MemberExists 建立 conversation 前確認對方 member 存在
	MemberExists(ctx context.Context, memberID string) (bool, error)
}

type conversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository create a ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO conversations(id, created_at, num_users) VALUES ($1, $2, $3)",
		conv.ID, conv.CreatedAt, len(conv.Members))
	if err != nil {
		return err
	}

	for _, memberID := range conv.Members {
		_, err = tx.Exec(ctx,
			"INSERT INTO conversation_members(conversation_id, member_id, joined_at) VALUES ($1, $2, $3)",
			conv.ID, memberID, conv.CreatedAt)
		if err != nil {
			return err
		}
	}

	conv.NumUsers = len(conv.Members)
	return tx.Commit(ctx)
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.QueryRow(ctx,
		"SELECT id, created_at, num_users FROM conversations WHERE id = $1",
		conversationID).Scan(&conv.ID, &conv.CreatedAt, &conv.NumUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	members, err := r.Members(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	conv.Members = members
	return &conv, nil
}

func (r *conversationRepository) AddMember(ctx context.Context, conversationID, memberID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// 鎖住 conversation row，與同房的 send/leave 序列化
	var numUsers int
	err = tx.QueryRow(ctx,
		"SELECT num_users FROM conversations WHERE id = $1 FOR UPDATE",
		conversationID).Scan(&numUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, errprocess.NotFound("conversation " + conversationID)
		}
		return false, err
	}

	ct, err := tx.Exec(ctx,
		"INSERT INTO conversation_members(conversation_id, member_id, joined_at) VALUES ($1, $2, now()) ON CONFLICT DO NOTHING",
		conversationID, memberID)
	if err != nil {
		return false, err
	}

	added := ct.RowsAffected() == 1
	if added {
		_, err = tx.Exec(ctx,
			"UPDATE conversations SET num_users = num_users + 1 WHERE id = $1",
			conversationID)
		if err != nil {
			return false, err
		}
	}

	return added, tx.Commit(ctx)
}

func (r *conversationRepository) RemoveMember(ctx context.Context, conversationID, memberID string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var numUsers int
	err = tx.QueryRow(ctx,
		"SELECT num_users FROM conversations WHERE id = $1 FOR UPDATE",
		conversationID).Scan(&numUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errprocess.NotFound("conversation " + conversationID)
		}
		return 0, err
	}

	ct, err := tx.Exec(ctx,
		"DELETE FROM conversation_members WHERE conversation_id = $1 AND member_id = $2",
		conversationID, memberID)
	if err != nil {
		return 0, err
	}
	if ct.RowsAffected() == 0 {
		return 0, errprocess.Unauthorized("member " + memberID + " is not in conversation")
	}

	remaining := numUsers - 1
	if remaining <= 0 {
		// 最後一個成員離開，conversation 連同訊息一起刪除
		_, err = tx.Exec(ctx, "DELETE FROM conversations WHERE id = $1", conversationID)
	} else {
		_, err = tx.Exec(ctx,
			"UPDATE conversations SET num_users = $1 WHERE id = $2",
			remaining, conversationID)
	}
	if err != nil {
		return 0, err
	}

	return remaining, tx.Commit(ctx)
}

func (r *conversationRepository) Delete(ctx context.Context, conversationID string) error {
	ct, err := r.db.Exec(ctx, "DELETE FROM conversations WHERE id = $1", conversationID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errprocess.NotFound("conversation " + conversationID)
	}
	return nil
}

func (r *conversationRepository) Members(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT member_id FROM conversation_members WHERE conversation_id = $1 ORDER BY joined_at",
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *conversationRepository) FindByMember(ctx context.Context, memberID string) ([]domain.Conversation, error) {
	return r.scanConversations(ctx,
		`SELECT c.id, c.created_at, c.num_users
		 FROM conversations c
		 JOIN conversation_members cm ON cm.conversation_id = c.id
		 WHERE cm.member_id = $1
		 ORDER BY c.created_at`,
		memberID)
}

func (r *conversationRepository) FindByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domain.Conversation, error) {
	return r.scanConversations(ctx,
		`SELECT c.id, c.created_at, c.num_users
		 FROM conversations c
		 JOIN conversation_members cm ON cm.conversation_id = c.id
		 WHERE cm.member_id = $1 AND c.created_at >= $2
		 ORDER BY c.created_at`,
		memberID, since)
}

func (r *conversationRepository) FindShared(ctx context.Context, memberA, memberB string) ([]domain.Conversation, error) {
	return r.scanConversations(ctx,
		`SELECT c.id, c.created_at, c.num_users
		 FROM conversations c
		 JOIN conversation_members a ON a.conversation_id = c.id AND a.member_id = $1
		 JOIN conversation_members b ON b.conversation_id = c.id AND b.member_id = $2
		 ORDER BY c.created_at`,
		memberA, memberB)
}

func (r *conversationRepository) MemberExists(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)",
		memberID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *conversationRepository) scanConversations(ctx context.Context, query string, args ...interface{}) ([]domain.Conversation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.NumUsers); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}
