package repo

import (
	"context"
	"sync"

	"chat-studio-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepoInterface is the single append-only chat timeline.
type MessageRepoInterface interface {
	Append(ctx context.Context, text string, isUser bool) (models.Message, error)
	ListAll(ctx context.Context) ([]models.Message, error)
	ClearAll(ctx context.Context) error
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MessageRepo persists messages through GORM (postgres or sqlite).
type MessageRepo struct {
	db *gorm.DB

	// mu serializes appends so timestamp order and insert order agree
	mu     sync.Mutex
	clock  *Clock
	seeded bool
}

func NewMessageRepository(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db, clock: NewClock()}
}

var byTimestamp = clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}

func (r *MessageRepo) Append(ctx context.Context, text string, isUser bool) (models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		// continue after the newest stored row so a restart never goes backwards
		var latest models.Message
		res := r.db.WithContext(ctx).
			Order(clause.OrderByColumn{Column: byTimestamp.Column, Desc: true}).
			Limit(1).
			Find(&latest)
		if res.Error != nil {
			return models.Message{}, unavailable("append", res.Error)
		}
		if res.RowsAffected > 0 {
			r.clock.Seed(latest.Timestamp)
		}
		r.seeded = true
	}

	msg := models.Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: r.clock.Next(),
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return models.Message{}, unavailable("append", err)
	}
	return msg, nil
}

// ListAll returns every message, oldest first.
func (r *MessageRepo) ListAll(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}
	if err := r.db.WithContext(ctx).Order(byTimestamp).Find(&messages).Error; err != nil {
		return nil, unavailable("list", err)
	}
	for i := range messages {
		messages[i].Timestamp = messages[i].Timestamp.UTC()
	}
	return messages, nil
}

func (r *MessageRepo) ClearAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Message{}).Error
	if err != nil {
		return unavailable("clear", err)
	}
	return nil
}

func (r *MessageRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return unavailable("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}
