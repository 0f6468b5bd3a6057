package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"group_chat_service/internal/member/domain"
	"group_chat_service/pkg/logger"
	"group_chat_service/pkg/middlewares"
)

// MemberHandler 处理用户相关的 HTTP 请求
type MemberHandler struct {
	Usecase MemberUseCase
}

// NewMemberHandler 创建新的 MemberHandler
func NewMemberHandler(usecase MemberUseCase) *MemberHandler {
	return &MemberHandler{
		Usecase: usecase,
	}
}

// Register 注册新用户
// @Summary 注册新用户
// @Description 处理用户注册请求
// @Tags Members
// @Accept json
// @Produce json
// @Success 200 {object} string "注册成功"
// @Failure 400 {object} string "请求错误"
// @Failure 500 {object} string "服务器错误"
// @Router /member/register [post]
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Register request", zap.String("email", req.Email))

	if err := h.Usecase.Register(context.Background(), req.Email, req.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "register success"})
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户通过邮箱和密码登录
// @Tags Members
// @Accept json
// @Produce json
// @Success 200 {object} string "登录成功"
// @Failure 400 {object} string "请求错误"
// @Failure 401 {object} string "登录失败"
// @Router /member/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login", zap.String("Email", req.Email))

	t, err := h.Usecase.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"token": t, "message": "login success"})
}

// Logout 用户登出
// @Summary 用户登出
// @Description 注销用户会话
// @Tags Members
// @Accept json
// @Produce json
// @Param auth query string false "用户登出信息"
// @Success 200 {object} string "注销成功"
// @Failure 500 {object} string "服务器错误"
// @Router /member/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	t := c.Query(middlewares.QueryToken)
	if t == "" {
		t = c.Cookies(middlewares.CookieToken)
	}
	if t == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "token not found"})
	}

	if err := h.Usecase.Logout(context.Background(), t); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "logout success"})
}

// FindByEmail 查找用户信息
// @Summary 查找用户信息
// @Description 根据邮箱查找用户信息
// @Tags Members
// @Accept json
// @Produce json
// @Param email query string true "用户邮箱"
// @Success 200 {object} string "用户信息"
// @Failure 400 {object} string "请求错误"
// @Failure 404 {object} string "未找到用户"
// @Router /member/find [get]
func (h *MemberHandler) FindByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}

	member, err := h.Usecase.FindMember(context.Background(), &domain.MemberQuery{Email: &email})
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    member.MemberID,
			"email": member.Email,
			"role":  member.Role,
		},
	})
}

// Delete 删除用户
// @Summary 删除用户
// @Description 删除用户并清理聊天侧关联数据
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "member id"
// @Success 200 {object} string "删除成功"
// @Failure 403 {object} string "权限不足"
// @Failure 500 {object} string "服务器错误"
// @Router /member/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenMemberID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nill", middlewares.TokenMemberID)})
	}
	admin, _ := c.Locals(middlewares.TokenAdmin).(bool)

	targetID := c.Params("id")
	// 只能刪自己，admin 可刪任何人
	if targetID != memberID && !admin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not allowed"})
	}

	if err := h.Usecase.Delete(context.Background(), targetID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Log.Info("member deleted", zap.String("member_id", targetID))
	return c.JSON(fiber.Map{"message": "delete success"})
}
