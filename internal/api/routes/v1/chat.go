package v1

import (
	"chat-studio-backend/internal/handlers"
	"chat-studio-backend/internal/libraries"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func registerChat(r fiber.Router, deps Dependencies) {
	chatHandler := handlers.NewChatHandler(deps.ChatRepo, deps.Events)

	r.Get("/health", chatHandler.Health)
	r.Post("/chat", deps.Workflow.TriggerChatWorkflow)
	r.Get("/messages", chatHandler.GetMessages)
	r.Delete("/messages", chatHandler.ClearMessages)

	if deps.Hub != nil {
		// Middleware to allow WebSocket upgrade
		r.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		r.Get("/ws", libraries.WebSocketHandler(deps.Hub, deps.Workflow))
	}
}
