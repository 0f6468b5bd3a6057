package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"group_chat_service/internal/chat/repository"
	"group_chat_service/pkg/errprocess"
	"group_chat_service/pkg/middlewares"
)

// ChatHTTPHandler definition chat 的 REST 入口
type ChatHTTPHandler struct {
	ConvUC    *ConversationUseCase
	MessageUC *SendMessageUseCase
}

// NewChatHTTPHandler create ChatHTTPHandler
func NewChatHTTPHandler(convUC *ConversationUseCase, messageUC *SendMessageUseCase) *ChatHTTPHandler {
	return &ChatHTTPHandler{
		ConvUC:    convUC,
		MessageUC: messageUC,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errprocess.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errprocess.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errprocess.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func viewer(c *fiber.Ctx) (string, repository.Visibility) {
	memberID, _ := c.Locals(middlewares.TokenMemberID).(string)
	admin, _ := c.Locals(middlewares.TokenAdmin).(bool)
	return memberID, repository.Visibility{
		MemberID: memberID,
		Admin:    admin,
	}
}

// CreateConversation 建立 1對1 conversation
// body: {"member_id": "<對方>"}
func (h *ChatHTTPHandler) CreateConversation(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	var req struct {
		MemberID string `json:"member_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	convID, err := h.ConvUC.Create(c.Context(), memberID, req.MemberID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"conversation_id": convID})
}

// GetConversation get conversation 與成員列表
func (h *ChatHTTPHandler) GetConversation(c *fiber.Ctx) error {
	memberID, v := viewer(c)

	conv, err := h.ConvUC.Find(c.Context(), c.Params("id"), memberID, v.Admin)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conv)
}

// ListConversations get 自己參與的 conversation
// query: since (unix seconds, optional)、with (另一個 member, optional)
func (h *ChatHTTPHandler) ListConversations(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	if other := c.Query("with"); other != "" {
		convs, err := h.ConvUC.ListShared(c.Context(), memberID, other)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(convs)
	}

	if sinceStr := c.Query("since"); sinceStr != "" {
		sec, err := strconv.ParseInt(sinceStr, 10, 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid since"})
		}
		convs, err := h.ConvUC.ListByMemberSince(c.Context(), memberID, time.Unix(sec, 0))
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(convs)
	}

	convs, err := h.ConvUC.ListByMember(c.Context(), memberID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(convs)
}

// AddMember 把 member 加進 conversation，操作者必須已是成員
func (h *ChatHTTPHandler) AddMember(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	var req struct {
		MemberID string `json:"member_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := h.ConvUC.AddMember(c.Context(), c.Params("id"), memberID, req.MemberID); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "member added"})
}

// LeaveConversation 自己離開 conversation
func (h *ChatHTTPHandler) LeaveConversation(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	if err := h.ConvUC.Leave(c.Context(), c.Params("id"), memberID); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "left conversation"})
}

// RemoveMember admin 把 member 踢出 conversation
func (h *ChatHTTPHandler) RemoveMember(c *fiber.Ctx) error {
	memberID, v := viewer(c)

	if err := h.ConvUC.Kick(c.Context(), c.Params("id"), memberID, c.Params("member_id"), v.Admin); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "member removed"})
}

// DeleteConversation admin 刪除整個 conversation，訊息隨之消滅
func (h *ChatHTTPHandler) DeleteConversation(c *fiber.Ctx) error {
	memberID, v := viewer(c)

	if err := h.ConvUC.Remove(c.Context(), c.Params("id"), memberID, v.Admin); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "conversation deleted"})
}

// SendMessage 發送訊息到 conversation
// body: {"content": "..."}
func (h *ChatHTTPHandler) SendMessage(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	msgID, err := h.MessageUC.Execute(c.Context(), c.Params("id"), memberID, req.Content)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message_id": msgID})
}

// GetMessage get 單一訊息與投遞狀態
func (h *ChatHTTPHandler) GetMessage(c *fiber.Ctx) error {
	_, v := viewer(c)

	msg, err := h.MessageUC.Find(c.Context(), v, c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(msg)
}

// SearchMessages 可見訊息的搜尋
// query: q (內容子字串)、from/to (unix seconds)、unread=true
func (h *ChatHTTPHandler) SearchMessages(c *fiber.Ctx) error {
	_, v := viewer(c)

	if c.Query("unread") == "true" {
		msgs, err := h.MessageUC.ListUnread(c.Context(), v)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(msgs)
	}

	if q := c.Query("q"); q != "" {
		msgs, err := h.MessageUC.Search(c.Context(), v, q)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(msgs)
	}

	if fromStr := c.Query("from"); fromStr != "" {
		fromSec, err := strconv.ParseInt(fromStr, 10, 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid from"})
		}
		toSec := time.Now().Unix()
		if toStr := c.Query("to"); toStr != "" {
			if toSec, err = strconv.ParseInt(toStr, 10, 64); err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid to"})
			}
		}
		msgs, err := h.MessageUC.ListByDateRange(c.Context(), v, time.Unix(fromSec, 0), time.Unix(toSec, 0))
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(msgs)
	}

	msgs, err := h.MessageUC.ListVisible(c.Context(), v)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(msgs)
}

// MarkRead 將訊息標記為已讀
func (h *ChatHTTPHandler) MarkRead(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	if err := h.MessageUC.MarkRead(c.Context(), c.Params("id"), memberID); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"msg": "marked read"})
}

// GetUnreadCount get 各 conversation 的未讀數
func (h *ChatHTTPHandler) GetUnreadCount(c *fiber.Ctx) error {
	memberID, _ := viewer(c)

	infos, err := h.MessageUC.GetCountUnreadMessages(c.Context(), memberID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(infos)
}
