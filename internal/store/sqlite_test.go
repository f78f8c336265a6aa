package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spurlabs/spur-chat/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()

	repo, err := NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return repo
}

func TestEnsureSessionIdempotent(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	first, err := repo.EnsureSession(ctx, "widget-abc")
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	second, err := repo.EnsureSession(ctx, "widget-abc")
	if err != nil {
		t.Fatalf("EnsureSession (repeat): %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same session id, got %q and %q", first.ID, second.ID)
	}
	if !first.CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("repeat EnsureSession must not touch created_at: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
}

func TestNewSessionGeneratesDistinctIDs(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	a, err := repo.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	b, err := repo.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
}

func TestGetSessionMissing(t *testing.T) {
	repo := newTestStore(t)

	sess, err := repo.GetSession(context.Background(), "never-created")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session for unknown id, got %+v", sess)
	}
}

func TestAppendAndListOrdering(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	const n = 7
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		if _, err := repo.AppendMessage(ctx, "s1", role, fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}

	msgs, err := repo.ListMessages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != n {
		t.Fatalf("expected %d messages, got %d", n, len(msgs))
	}
	for i, m := range msgs {
		if want := fmt.Sprintf("msg-%d", i); m.Content != want {
			t.Errorf("position %d: got %q, want %q", i, m.Content, want)
		}
		if i > 0 && m.CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Errorf("created_at must be non-decreasing: %v before %v", m.CreatedAt, msgs[i-1].CreatedAt)
		}
	}
}

func TestListMessagesRecentLimit(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	for i := 0; i < 15; i++ {
		if _, err := repo.AppendMessage(ctx, "s1", domain.RoleUser, fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}

	msgs, err := repo.ListMessages(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(msgs))
	}
	// Most recent 10 are msg-5..msg-14, returned ascending.
	for i, m := range msgs {
		if want := fmt.Sprintf("msg-%d", i+5); m.Content != want {
			t.Errorf("position %d: got %q, want %q", i, m.Content, want)
		}
	}
}

func TestListMessagesUnknownSession(t *testing.T) {
	repo := newTestStore(t)

	msgs, err := repo.ListMessages(context.Background(), "unknown", 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty log for unknown session, got %d messages", len(msgs))
	}
}

func TestAppendMessageRejectsUnknownRole(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, "s1", domain.Role("system"), "nope"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestMessagesImmutableAcrossAppends(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "s1"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, "s1", domain.RoleUser, "hello"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	before, err := repo.ListMessages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}

	if _, err := repo.AppendMessage(ctx, "s1", domain.RoleAssistant, "hi there"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	after, err := repo.ListMessages(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d messages, got %d", len(before)+1, len(after))
	}
	for i, m := range before {
		if after[i].ID != m.ID || after[i].Content != m.Content || after[i].Role != m.Role || !after[i].CreatedAt.Equal(m.CreatedAt) {
			t.Errorf("existing message %d changed after append: %+v vs %+v", i, after[i], m)
		}
	}
}
