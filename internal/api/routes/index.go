package routes

import (
	v1 "chat-studio-backend/internal/api/routes/v1"

	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, deps v1.Dependencies) {
	api := app.Group("/api")

	// the browser client calls /api directly; /api/v1 is the versioned alias
	v1.RegisterRoutes(api, deps)
	v1.RegisterRoutes(api.Group("/v1"), deps)
}
