package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"group_chat_service/internal/chat/domain"
	"group_chat_service/pkg"
	"group_chat_service/pkg/errprocess"
)

// Visibility 查詢端的可見範圍
// 一般成員只能看到自己是 sender 或 recipient 的訊息，admin 可看全部
type Visibility struct {
	MemberID string
	Admin    bool
}

// MessageRepository definition 訊息與收件人快照的存取
type MessageRepository interface {
	// Create 在單一交易內完成四向更新：
	// 訊息本體、conversation 的訊息列表(FK)、sender 的已發送(FK)、
	// 每個收件人的投遞紀錄。成員集在鎖下讀取，快照不受之後的異動影響。
	Create(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, v Visibility, messageID string) (*domain.Message, error)
	FindBySenderOrRecipient(ctx context.Context, v Visibility) ([]domain.Message, error)
	SearchContent(ctx context.Context, v Visibility, substring string) ([]domain.Message, error)
	FindByDateRange(ctx context.Context, v Visibility, from, to time.Time) ([]domain.Message, error)
	FindUnread(ctx context.Context, v Visibility) ([]domain.Message, error)
	FindByConversationBefore(ctx context.Context, v Visibility, conversationID string, before time.Time, limit int) ([]domain.Message, error)
	CountUnreadByConversation(ctx context.Context, memberID string) ([]domain.ConversationUnreadInfo, error)
	MarkRead(ctx context.Context, memberID, messageID string) error
	RecipientIDs(ctx context.Context, messageID string) ([]string, error)
	// ScrubRecipient 把被刪除的 member 從所有投遞紀錄移除，訊息本身保留
	ScrubRecipient(ctx context.Context, memberID string) error
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// 鎖住 conversation row，快照成員集不會被同房的 add/leave 插隊
	var numUsers int
	err = tx.QueryRow(ctx,
		"SELECT num_users FROM conversations WHERE id = $1 FOR UPDATE",
		msg.ConversationID).Scan(&numUsers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errprocess.NotFound("conversation " + msg.ConversationID)
		}
		return err
	}

	rows, err := tx.Query(ctx,
		"SELECT member_id FROM conversation_members WHERE conversation_id = $1 ORDER BY joined_at",
		msg.ConversationID)
	if err != nil {
		return err
	}
	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			rows.Close()
			return err
		}
		members = append(members, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if !pkg.Contains(members, msg.SenderID) {
		return errprocess.Unauthorized("sender " + msg.SenderID + " is not in conversation")
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO messages(id, conversation_id, sender_id, content, sent_at) VALUES ($1, $2, $3, $4, $5)",
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.SentAt)
	if err != nil {
		return err
	}

	recipients := domain.ResolveRecipients(members, msg.SenderID)
	msg.Recipients = make([]domain.Recipient, 0, len(recipients))
	for _, memberID := range recipients {
		_, err = tx.Exec(ctx,
			"INSERT INTO message_recipients(message_id, member_id, read) VALUES ($1, $2, false)",
			msg.ID, memberID)
		if err != nil {
			return err
		}
		msg.Recipients = append(msg.Recipients, domain.Recipient{MemberID: memberID})
	}

	return tx.Commit(ctx)
}

func (r *messageRepository) FindByID(ctx context.Context, v Visibility, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.QueryRow(ctx,
		"SELECT id, conversation_id, sender_id, content, sent_at FROM messages WHERE id = $1",
		messageID).Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errprocess.NotFound("message " + messageID)
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		"SELECT member_id, read, read_at FROM message_recipients WHERE message_id = $1",
		messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rec domain.Recipient
		if err := rows.Scan(&rec.MemberID, &rec.Read, &rec.ReadAt); err != nil {
			return nil, err
		}
		msg.Recipients = append(msg.Recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !v.Admin && msg.SenderID != v.MemberID && !pkg.Contains(msg.RecipientIDs(), v.MemberID) {
		return nil, errprocess.Unauthorized("member " + v.MemberID + " has no relation to message")
	}

	return &msg, nil
}

// visibilityClause 組出可見範圍的 WHERE 片段，參數動態編號
func visibilityClause(v Visibility, params *[]interface{}) string {
	if v.Admin {
		return "1=1"
	}
	*params = append(*params, v.MemberID)
	n := len(*params)
	return fmt.Sprintf(
		"(m.sender_id = $%d OR EXISTS (SELECT 1 FROM message_recipients r WHERE r.message_id = m.id AND r.member_id = $%d))",
		n, n)
}

func (r *messageRepository) FindBySenderOrRecipient(ctx context.Context, v Visibility) ([]domain.Message, error) {
	params := []interface{}{}
	queryStr := "SELECT m.id, m.conversation_id, m.sender_id, m.content, m.sent_at FROM messages m WHERE " +
		visibilityClause(v, &params) + " ORDER BY m.sent_at"
	return r.scanMessages(ctx, queryStr, params...)
}

func (r *messageRepository) SearchContent(ctx context.Context, v Visibility, substring string) ([]domain.Message, error) {
	params := []interface{}{}
	clause := visibilityClause(v, &params)
	params = append(params, "%"+substring+"%")
	queryStr := fmt.Sprintf(
		"SELECT m.id, m.conversation_id, m.sender_id, m.content, m.sent_at FROM messages m WHERE %s AND m.content LIKE $%d ORDER BY m.sent_at",
		clause, len(params))
	return r.scanMessages(ctx, queryStr, params...)
}

func (r *messageRepository) FindByDateRange(ctx context.Context, v Visibility, from, to time.Time) ([]domain.Message, error) {
	params := []interface{}{}
	clause := visibilityClause(v, &params)
	params = append(params, from, to)
	queryStr := fmt.Sprintf(
		"SELECT m.id, m.conversation_id, m.sender_id, m.content, m.sent_at FROM messages m WHERE %s AND m.sent_at >= $%d AND m.sent_at <= $%d ORDER BY m.sent_at",
		clause, len(params)-1, len(params))
	return r.scanMessages(ctx, queryStr, params...)
}

func (r *messageRepository) FindUnread(ctx context.Context, v Visibility) ([]domain.Message, error) {
	return r.scanMessages(ctx,
		`SELECT m.id, m.conversation_id, m.sender_id, m.content, m.sent_at
		 FROM messages m
		 JOIN message_recipients r ON r.message_id = m.id
		 WHERE r.member_id = $1 AND r.read = false
		 ORDER BY m.sent_at`,
		v.MemberID)
}

func (r *messageRepository) FindByConversationBefore(ctx context.Context, v Visibility, conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	params := []interface{}{}
	clause := visibilityClause(v, &params)
	params = append(params, conversationID, before, limit)
	n := len(params)
	queryStr := fmt.Sprintf(
		"SELECT m.id, m.conversation_id, m.sender_id, m.content, m.sent_at FROM messages m WHERE %s AND m.conversation_id = $%d AND m.sent_at < $%d ORDER BY m.sent_at DESC LIMIT $%d",
		clause, n-2, n-1, n)
	return r.scanMessages(ctx, queryStr, params...)
}

func (r *messageRepository) CountUnreadByConversation(ctx context.Context, memberID string) ([]domain.ConversationUnreadInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.conversation_id, count(*), max(extract(epoch FROM m.sent_at))::bigint
		 FROM messages m
		 JOIN message_recipients r ON r.message_id = m.id
		 WHERE r.member_id = $1 AND r.read = false
		 GROUP BY m.conversation_id
		 ORDER BY 3 DESC`,
		memberID)
	if err != nil {
		return nil, fmt.Errorf("count unread error: %w", err)
	}
	defer rows.Close()

	var results []domain.ConversationUnreadInfo
	for rows.Next() {
		var info domain.ConversationUnreadInfo
		if err := rows.Scan(&info.ConversationID, &info.UnreadCount, &info.LastUnreadTimeStamp); err != nil {
			return nil, err
		}
		results = append(results, info)
	}
	return results, rows.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, memberID, messageID string) error {
	ct, err := r.db.Exec(ctx,
		"UPDATE message_recipients SET read = true, read_at = now() WHERE message_id = $1 AND member_id = $2 AND read = false",
		messageID, memberID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// 已讀過再標一次是 no-op，收件紀錄不存在才是錯
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM message_recipients WHERE message_id = $1 AND member_id = $2)",
			messageID, memberID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return errprocess.NotFound("message " + messageID + " for member " + memberID)
		}
	}
	return nil
}

func (r *messageRepository) RecipientIDs(ctx context.Context, messageID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT member_id FROM message_recipients WHERE message_id = $1",
		messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *messageRepository) ScrubRecipient(ctx context.Context, memberID string) error {
	_, err := r.db.Exec(ctx,
		"DELETE FROM message_recipients WHERE member_id = $1",
		memberID)
	return err
}

func (r *messageRepository) scanMessages(ctx context.Context, query string, args ...interface{}) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
