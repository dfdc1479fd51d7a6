package llmHandlers

import (
	"context"
)

type MessageRole string

const (
	RoleSystem MessageRole = "system"
	RoleUser   MessageRole = "user"
	RoleModel  MessageRole = "model"
)

// Message is one (role, text) pair of the model call.
type Message struct {
	Role    MessageRole
	Content string
}

// Client is the generative model collaborator. Implementations return the
// generated text, which may be empty.
type Client interface {
	Chat(ctx context.Context, systemMessage string, messages []Message) (string, error)
}
