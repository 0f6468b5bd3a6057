package router

import (
	"github.com/gofiber/fiber/v2"

	"group_chat_service/internal/member/app"
	"group_chat_service/pkg/middlewares"
)

// RegisterRoutes 注册用户相关的路由
func RegisterRoutes(r *fiber.App, memberHandler *app.MemberHandler) {
	memberRoutes := r.Group("/member")
	memberRoutes.Post("/register", memberHandler.Register)
	memberRoutes.Post("/login", memberHandler.Login)
	memberRoutes.Get("/find", memberHandler.FindByEmail)

	memberRoutes.Use(middlewares.JWTMiddleware())
	memberRoutes.Post("/logout", memberHandler.Logout)
	memberRoutes.Delete("/:id", memberHandler.Delete)
}
