package conversation_test

import (
	"path/filepath"
	"testing"

	"github.com/josemri/plyr-voice/internal/conversation"
)

func newSQLiteStore(t *testing.T) *conversation.SQLiteStore {
	t.Helper()
	store, err := conversation.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_EmptyDatabase(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	messages, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("Load() = %d messages, want empty", len(messages))
	}
}

func TestSQLiteStore_RoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	saved := []conversation.ChatMessage{
		conversation.NewChatMessage(conversation.RoleUser, "what's playing"),
		conversation.NewChatMessage(conversation.RoleAssistant, "Nothing is playing right now."),
		conversation.NewChatMessage(conversation.RoleUser, "play yesterday"),
		conversation.NewChatMessage(conversation.RoleAssistant, "Now playing Yesterday by The Beatles."),
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != len(saved) {
		t.Fatalf("Load() = %d messages, want %d", len(loaded), len(saved))
	}
	for i := range saved {
		if loaded[i].ID != saved[i].ID || loaded[i].Role != saved[i].Role || loaded[i].Text != saved[i].Text {
			t.Errorf("message %d = %+v, want %+v", i, loaded[i], saved[i])
		}
	}
}

func TestSQLiteStore_SaveReplacesPreviousList(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t)
	first := []conversation.ChatMessage{
		conversation.NewChatMessage(conversation.RoleUser, "one"),
		conversation.NewChatMessage(conversation.RoleUser, "two"),
	}
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	second := []conversation.ChatMessage{
		conversation.NewChatMessage(conversation.RoleUser, "replacement"),
	}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].Text != "replacement" {
		t.Errorf("Load() = %+v, want the replacement list only", loaded)
	}
}

func TestLog_OverSQLiteStore(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := conversation.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	log, err := conversation.NewLog(store)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := log.Append(conversation.RoleUser, "pause"); err != nil {
		t.Fatal(err)
	}
	if _, err := log.Append(conversation.RoleAssistant, "Paused."); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen: history survives the process boundary.
	reopened, err := conversation.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	messages, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("reloaded %d messages, want 2", len(messages))
	}
	if messages[1].Text != "Paused." {
		t.Errorf("last message = %q", messages[1].Text)
	}
}
