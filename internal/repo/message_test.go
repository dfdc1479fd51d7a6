package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"chat-studio-backend/internal/models"

	"github.com/google/uuid"
)

func TestAppendReturnsPersistedMessage(t *testing.T) {
	forEachStore(t, func(t *testing.T, store MessageRepoInterface) {
		got := mustAppend(t, store, "hi there", true)
		if got.ID == uuid.Nil {
			t.Fatal("Append() returned nil id")
		}
		if got.Text != "hi there" || !got.IsUser {
			t.Errorf("Append() = %+v", got)
		}

		msgs := mustList(t, store)
		if len(msgs) != 1 {
			t.Fatalf("ListAll() len = %d, want 1", len(msgs))
		}
		stored := msgs[0]
		if stored.ID != got.ID || stored.Text != got.Text || stored.IsUser != got.IsUser {
			t.Errorf("stored %+v, returned %+v", stored, got)
		}
		if !stored.Timestamp.Equal(got.Timestamp) {
			t.Errorf("stored timestamp %s, returned %s", stored.Timestamp, got.Timestamp)
		}
	})
}

func TestListAllFollowsAppendOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, store MessageRepoInterface) {
		const n = 25
		var appended []models.Message
		for i := 0; i < n; i++ {
			appended = append(appended, mustAppend(t, store, fmt.Sprintf("msg %d", i), i%2 == 0))
		}

		msgs := mustList(t, store)
		if len(msgs) != n {
			t.Fatalf("ListAll() len = %d, want %d", len(msgs), n)
		}
		for i := range msgs {
			if msgs[i].ID != appended[i].ID {
				t.Errorf("position %d: got %q, want %q", i, msgs[i].Text, appended[i].Text)
			}
			if i > 0 && !msgs[i].Timestamp.After(msgs[i-1].Timestamp) {
				t.Errorf("timestamp %d (%s) not after %d (%s)", i, msgs[i].Timestamp, i-1, msgs[i-1].Timestamp)
			}
		}
	})
}

func TestConcurrentAppends(t *testing.T) {
	forEachStore(t, func(t *testing.T, store MessageRepoInterface) {
		const workers, perWorker = 8, 10

		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					if _, err := store.Append(context.Background(), fmt.Sprintf("w%d-%d", w, i), true); err != nil {
						errs <- err
					}
					// readers run alongside writers
					if _, err := store.ListAll(context.Background()); err != nil {
						errs <- err
					}
				}
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent call failed: %v", err)
		}

		msgs := mustList(t, store)
		if len(msgs) != workers*perWorker {
			t.Fatalf("ListAll() len = %d, want %d", len(msgs), workers*perWorker)
		}
		seen := make(map[uuid.UUID]bool)
		for i, m := range msgs {
			if seen[m.ID] {
				t.Errorf("duplicate id %s", m.ID)
			}
			seen[m.ID] = true
			if i > 0 && !m.Timestamp.After(msgs[i-1].Timestamp) {
				t.Errorf("timestamps out of order at %d", i)
			}
		}
	})
}

func TestClearAll(t *testing.T) {
	forEachStore(t, func(t *testing.T, store MessageRepoInterface) {
		mustAppend(t, store, "one", true)
		mustAppend(t, store, "two", false)

		if err := store.ClearAll(context.Background()); err != nil {
			t.Fatalf("ClearAll() error = %v", err)
		}
		if msgs := mustList(t, store); len(msgs) != 0 {
			t.Fatalf("ListAll() after clear len = %d", len(msgs))
		}
		if err := store.ClearAll(context.Background()); err != nil {
			t.Fatalf("second ClearAll() error = %v", err)
		}

		// the log keeps working after a clear
		after := mustAppend(t, store, "three", true)
		msgs := mustList(t, store)
		if len(msgs) != 1 || msgs[0].ID != after.ID {
			t.Fatalf("ListAll() after re-append = %+v", msgs)
		}
	})
}

func TestListAllEmptyIsNotNil(t *testing.T) {
	forEachStore(t, func(t *testing.T, store MessageRepoInterface) {
		msgs := mustList(t, store)
		if msgs == nil || len(msgs) != 0 {
			t.Fatalf("ListAll() = %#v, want empty slice", msgs)
		}
	})
}

func TestMemoryListAllReturnsCopy(t *testing.T) {
	store := NewMemoryMessageRepository()
	mustAppend(t, store, "original", true)

	msgs := mustList(t, store)
	msgs[0].Text = "changed"

	if again := mustList(t, store); again[0].Text != "original" {
		t.Fatalf("store was mutated through ListAll result: %q", again[0].Text)
	}
}

func TestMessageRepoSurvivesRestart(t *testing.T) {
	db := setupTestDB(t)

	// a row written by an earlier process with a clock ahead of ours
	future := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	earlier := models.Message{ID: uuid.New(), Text: "from before", IsUser: true, Timestamp: future}
	if err := db.Create(&earlier).Error; err != nil {
		t.Fatalf("seed row: %v", err)
	}

	store := NewMessageRepository(db)
	next := mustAppend(t, store, "after restart", false)
	if !next.Timestamp.After(future) {
		t.Fatalf("new timestamp %s not after stored %s", next.Timestamp, future)
	}

	msgs := mustList(t, store)
	if len(msgs) != 2 || msgs[0].ID != earlier.ID || msgs[1].ID != next.ID {
		t.Fatalf("unexpected order: %+v", msgs)
	}
}

func TestMessageRepoUnavailable(t *testing.T) {
	db := setupTestDB(t)
	store := NewMessageRepository(db)

	sqlDB, _ := db.DB()
	sqlDB.Close()

	ctx := context.Background()
	if _, err := store.Append(ctx, "x", true); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Append() error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := store.ListAll(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("ListAll() error = %v, want ErrStoreUnavailable", err)
	}
	if err := store.ClearAll(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("ClearAll() error = %v, want ErrStoreUnavailable", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Ping() error = %v, want ErrStoreUnavailable", err)
	}
}
