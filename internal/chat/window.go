package chat

import (
	"context"
	"fmt"

	"github.com/spurlabs/spur-chat/internal/domain"
	"github.com/spurlabs/spur-chat/internal/store"
)

// DefaultWindowSize is the number of recent messages included in a context
// window when no explicit size is configured.
const DefaultWindowSize = 10

// WindowBuilder produces the bounded, role-normalized history submitted to
// the generation provider. Truncation is pure recency eviction: the most
// recent size messages, ascending by time. A window may start mid-exchange on
// an assistant turn; the provider is told each turn's role, so that is fine.
// Providers charge and degrade with context size — a fixed recency window
// trades long-range memory for bounded cost and latency.
type WindowBuilder struct {
	repo store.Repository
	size int
}

// NewWindowBuilder creates a WindowBuilder. A non-positive size falls back to
// DefaultWindowSize.
func NewWindowBuilder(repo store.Repository, size int) *WindowBuilder {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &WindowBuilder{repo: repo, size: size}
}

// Size returns the configured window bound.
func (b *WindowBuilder) Size() int {
	return b.size
}

// Build returns the most recent size messages of the session, ascending.
func (b *WindowBuilder) Build(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	messages, err := b.repo.ListMessages(ctx, sessionID, b.size)
	if err != nil {
		return nil, fmt.Errorf("list messages for window: %w", err)
	}

	turns := make([]domain.Turn, 0, len(messages))
	for _, msg := range messages {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("message %s: invalid role %q", msg.ID, msg.Role)
		}
		turns = append(turns, domain.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns, nil
}
