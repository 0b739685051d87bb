package history

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestSQLStore_AppendAndMessagesInOrder(t *testing.T) {
	store := NewSQLStore(openTestDB(t))
	ctx := context.Background()

	turns := []Message{
		{Type: TypeHuman, Content: "hi"},
		{Type: TypeAI, Content: "hello"},
		{Type: TypeHuman, Content: "how are you"},
	}
	for _, m := range turns {
		if err := store.Append(ctx, "s1", m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Messages(ctx, "s1")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("expected %d messages, got %d", len(turns), len(got))
	}
	for i := range turns {
		if got[i] != turns[i] {
			t.Fatalf("message %d: expected %+v, got %+v", i, turns[i], got[i])
		}
	}
}

func TestSQLStore_SessionsIsolated(t *testing.T) {
	store := NewSQLStore(openTestDB(t))
	ctx := context.Background()

	if err := store.Append(ctx, "a", Message{Type: TypeHuman, Content: "for a"}); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if err := store.Append(ctx, "b", Message{Type: TypeHuman, Content: "for b"}); err != nil {
		t.Fatalf("append b: %v", err)
	}

	got, err := store.Messages(ctx, "a")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(got) != 1 || got[0].Content != "for a" {
		t.Fatalf("session a leaked: %+v", got)
	}
}

func TestSQLStore_RecentReturnsNewestOldestFirst(t *testing.T) {
	store := NewSQLStore(openTestDB(t))
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		if err := store.Append(ctx, "s1", Message{Type: TypeHuman, Content: content}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Recent(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	want := []string{"three", "four", "five"}
	for i := range want {
		if got[i].Content != want[i] {
			t.Fatalf("recent[%d]: expected %q, got %q", i, want[i], got[i].Content)
		}
	}
}

func TestSQLStore_EmptySession(t *testing.T) {
	store := NewSQLStore(openTestDB(t))

	got, err := store.Messages(context.Background(), "nope")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}
