package llmHandlers

import (
	"chat-studio-backend/internal/models"
)

// DefaultContextWindow is how many recent turns are sent to the model.
const DefaultContextWindow = 10

// BuildContext maps the last windowSize messages of history to model
// messages, oldest first. history is not modified.
func BuildContext(history []models.Message, windowSize int) []Message {
	if windowSize <= 0 {
		windowSize = DefaultContextWindow
	}

	start := 0
	if len(history) > windowSize {
		start = len(history) - windowSize
	}

	out := make([]Message, 0, len(history)-start)
	for _, msg := range history[start:] {
		role := RoleModel
		if msg.IsUser {
			role = RoleUser
		}
		out = append(out, Message{Role: role, Content: msg.Text})
	}
	return out
}
