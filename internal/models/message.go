package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat turn. Rows are append-only.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text      string    `gorm:"not null" json:"text"`
	IsUser    bool      `gorm:"not null" json:"isUser"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Message) TableName() string {
	return "messages"
}
