package v1

import (
	"chat-studio-backend/internal/libraries"
	"chat-studio-backend/internal/repo"
	"chat-studio-backend/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	ChatRepo repo.MessageRepoInterface
	Workflow *workflow.Workflow
	Hub      *libraries.Hub
	Events   libraries.EventBus
}

func RegisterRoutes(r fiber.Router, deps Dependencies) {
	registerChat(r, deps)
}
