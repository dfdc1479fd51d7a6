package repo

import (
	"context"
	"testing"

	"chat-studio-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// forEachStore runs fn against both store implementations.
func forEachStore(t *testing.T, fn func(t *testing.T, store MessageRepoInterface)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryMessageRepository())
	})
	t.Run("gorm", func(t *testing.T) {
		fn(t, NewMessageRepository(setupTestDB(t)))
	})
}

func mustAppend(t *testing.T, store MessageRepoInterface, text string, isUser bool) models.Message {
	t.Helper()
	msg, err := store.Append(context.Background(), text, isUser)
	if err != nil {
		t.Fatalf("Append(%q) error = %v", text, err)
	}
	return msg
}

func mustList(t *testing.T, store MessageRepoInterface) []models.Message {
	t.Helper()
	msgs, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	return msgs
}
