package repo

import (
	"context"
	"sync"

	"chat-studio-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryMessageRepo keeps the timeline in process memory. Contents are lost
// on restart.
type MemoryMessageRepo struct {
	mu       sync.RWMutex
	messages []models.Message
	clock    *Clock
}

func NewMemoryMessageRepository() *MemoryMessageRepo {
	return &MemoryMessageRepo{clock: NewClock()}
}

func (r *MemoryMessageRepo) Append(_ context.Context, text string, isUser bool) (models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := models.Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: r.clock.Next(),
	}
	r.messages = append(r.messages, msg)
	return msg, nil
}

// ListAll returns a copy; callers may not see later appends through it.
func (r *MemoryMessageRepo) ListAll(_ context.Context) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Message, len(r.messages))
	copy(out, r.messages)
	return out, nil
}

func (r *MemoryMessageRepo) ClearAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	return nil
}

func (r *MemoryMessageRepo) Ping(context.Context) error {
	return nil
}
