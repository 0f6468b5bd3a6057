package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"

	"group_chat_service/internal/chat/app"
	"group_chat_service/pkg/middlewares"
)

// RegisterRoutes 注册聊天相关的路由
// @title Group Chat Service API
// @version 1.0
// @description API documentation for Group Chat Service
// @host localhost:8081
// @BasePath /
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler, chatHTTP *app.ChatHTTPHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)

	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	convRoutes := r.Group("/conversations")
	convRoutes.Post("/", chatHTTP.CreateConversation)
	convRoutes.Get("/", chatHTTP.ListConversations)
	convRoutes.Get("/:id", chatHTTP.GetConversation)
	convRoutes.Post("/:id/members", chatHTTP.AddMember)
	convRoutes.Delete("/:id/members/me", chatHTTP.LeaveConversation)
	convRoutes.Delete("/:id/members/:member_id", chatHTTP.RemoveMember)
	convRoutes.Delete("/:id", chatHTTP.DeleteConversation)
	convRoutes.Post("/:id/messages", chatHTTP.SendMessage)

	msgRoutes := r.Group("/messages")
	msgRoutes.Get("/unread/count", chatHTTP.GetUnreadCount)
	msgRoutes.Get("/search", chatHTTP.SearchMessages)
	msgRoutes.Get("/:id", chatHTTP.GetMessage)
	msgRoutes.Post("/:id/read", chatHTTP.MarkRead)
}
