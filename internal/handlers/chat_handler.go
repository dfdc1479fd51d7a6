package handlers

import (
	"context"
	"log"
	"time"

	"chat-studio-backend/internal/libraries"
	"chat-studio-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

// the history endpoints are plain passthroughs; no service layer
type ChatHandler struct {
	chatRepo repo.MessageRepoInterface
	events   libraries.EventBus
}

func NewChatHandler(chatRepo repo.MessageRepoInterface, events libraries.EventBus) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, events: events}
}

// GetMessages returns the whole timeline, oldest first.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	messages, err := h.chatRepo.ListAll(c.UserContext())
	if err != nil {
		log.Println(err, "Error getting messages")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get messages",
		})
	}
	return c.Status(fiber.StatusOK).JSON(messages)
}

// ClearMessages deletes every message.
func (h *ChatHandler) ClearMessages(c *fiber.Ctx) error {
	if err := h.chatRepo.ClearAll(c.UserContext()); err != nil {
		log.Println(err, "Error clearing messages")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear messages",
		})
	}

	if h.events != nil {
		err := h.events.Publish(c.UserContext(), libraries.WebSocketMessage{Type: libraries.WebSocketMessageTypeCleared})
		if err != nil {
			log.Println(err, "Error publishing clear event")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

// Health reports whether the message store answers.
func (h *ChatHandler) Health(c *fiber.Ctx) error {
	pinger, ok := h.chatRepo.(repo.Pinger)
	if !ok {
		return c.JSON(fiber.Map{"status": "ok", "store": "ok"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		log.Println(err, "Health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"store":  "unavailable",
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "store": "ok"})
}
