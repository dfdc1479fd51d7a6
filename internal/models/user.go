package models

import (
	"github.com/google/uuid"
)

// User is kept for schema parity; no route reads or writes it yet.
// Password holds a bcrypt hash, never the raw password.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"not null;uniqueIndex" json:"username"`
	Password string    `gorm:"not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}
