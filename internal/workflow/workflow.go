package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chat-studio-backend/internal/libraries"
	llmHandlers "chat-studio-backend/internal/llm_handlers"
	"chat-studio-backend/internal/models"
	"chat-studio-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidRequest = errors.New("message cannot be empty")
	ErrUpstream       = errors.New("message store failed")
	ErrModel          = errors.New("model call failed")
)

// FallbackReply is stored when the model answers with no text.
const FallbackReply = "Sorry, I couldn't generate a response."

const defaultModelTimeout = 60 * time.Second

type Options struct {
	SystemPrompt  string
	ContextWindow int
	ModelTimeout  time.Duration
	Events        libraries.EventBus
}

// Workflow runs one chat turn: record the user message, ask the model with
// the recent history, record the reply.
type Workflow struct {
	chatRepo repo.MessageRepoInterface
	llm      llmHandlers.Client
	events   libraries.EventBus

	systemPrompt string
	window       int
	modelTimeout time.Duration
}

func NewWorkflow(chatRepo repo.MessageRepoInterface, llm llmHandlers.Client, opts Options) *Workflow {
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = llmHandlers.DefaultContextWindow
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = defaultModelTimeout
	}
	return &Workflow{
		chatRepo:     chatRepo,
		llm:          llm,
		events:       opts.Events,
		systemPrompt: opts.SystemPrompt,
		window:       opts.ContextWindow,
		modelTimeout: opts.ModelTimeout,
	}
}

// Run executes the turn. The steps run in order and stop at the first
// failure; a user message already stored is kept when the model fails.
// Cancellation of ctx does not abort a turn that has started.
func (w *Workflow) Run(ctx context.Context, message string) (models.Message, error) {
	if strings.TrimSpace(message) == "" {
		return models.Message{}, ErrInvalidRequest
	}
	ctx = context.WithoutCancel(ctx)

	userMsg, err := w.chatRepo.Append(ctx, message, true)
	if err != nil {
		log.Printf("chat: record user turn: %v", err)
		w.publish(ctx, libraries.WebSocketMessageTypeChatError, &libraries.ErrorPayload{Message: "Failed to save message"})
		return models.Message{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	w.publish(ctx, libraries.WebSocketMessageTypeCreated, userMsg)

	history, err := w.chatRepo.ListAll(ctx)
	if err != nil {
		log.Printf("chat: load history: %v", err)
		w.publish(ctx, libraries.WebSocketMessageTypeChatError, &libraries.ErrorPayload{Message: "Failed to load history"})
		return models.Message{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	chatContext := llmHandlers.BuildContext(history, w.window)

	w.publish(ctx, libraries.WebSocketMessageTypeChatStarting, nil)
	reply, err := w.callModel(ctx, chatContext)
	if err != nil {
		log.Printf("chat: model call: %v", err)
		w.publish(ctx, libraries.WebSocketMessageTypeChatError, &libraries.ErrorPayload{Message: "Failed to get response from AI"})
		return models.Message{}, fmt.Errorf("%w: %v", ErrModel, err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	aiMsg, err := w.chatRepo.Append(ctx, reply, false)
	if err != nil {
		log.Printf("chat: record model turn: %v", err)
		w.publish(ctx, libraries.WebSocketMessageTypeChatError, &libraries.ErrorPayload{Message: "Failed to save reply"})
		return models.Message{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	w.publish(ctx, libraries.WebSocketMessageTypeCreated, aiMsg)
	w.publish(ctx, libraries.WebSocketMessageTypeChatCompleted, nil)

	return aiMsg, nil
}

func (w *Workflow) callModel(ctx context.Context, messages []llmHandlers.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.modelTimeout)
	defer cancel()

	reply, err := w.llm.Chat(ctx, w.systemPrompt, messages)
	if err != nil {
		return "", err
	}
	// a client that ignores its context still must not outlive the deadline
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return reply, nil
}

func (w *Workflow) publish(ctx context.Context, kind libraries.WebSocketMessageType, data interface{}) {
	if w.events == nil {
		return
	}
	if err := w.events.Publish(ctx, libraries.WebSocketMessage{Type: kind, Data: data}); err != nil {
		log.Printf("chat: publish %s event: %v", kind, err)
	}
}

// errorResponse maps a Run error to the status and message shown to callers.
// Store and provider details stay in the log.
func errorResponse(err error) (int, string) {
	if errors.Is(err, ErrInvalidRequest) {
		return fiber.StatusBadRequest, "Message cannot be empty"
	}
	return fiber.StatusInternalServerError, "Failed to get response from AI"
}

// TriggerChatWorkflow handles POST /chat.
func (w *Workflow) TriggerChatWorkflow(c *fiber.Ctx) error {
	var dto struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	reply, err := w.Run(c.UserContext(), dto.Message)
	if err != nil {
		status, msg := errorResponse(err)
		return c.Status(status).JSON(fiber.Map{
			"error": msg,
		})
	}

	return c.JSON(fiber.Map{
		"message":   reply.Text,
		"id":        reply.ID.String(),
		"timestamp": reply.Timestamp.Format(time.RFC3339Nano),
	})
}

// ProcessChatMessage runs a turn submitted over the websocket and answers
// the sending client.
func (w *Workflow) ProcessChatMessage(hub *libraries.Hub, client *libraries.Client, message *libraries.ChatMessagePayload) {
	reply, err := w.Run(context.Background(), message.Message)
	if err != nil {
		_, msg := errorResponse(err)
		libraries.SendErrorMessage(hub, client, msg)
		return
	}

	libraries.SendChatMessageResponse(hub, client, &libraries.ChatMessageResponsePayload{
		Message:   reply.Text,
		ID:        reply.ID.String(),
		Timestamp: reply.Timestamp.Format(time.RFC3339Nano),
	})
}
