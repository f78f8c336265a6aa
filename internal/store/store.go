// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/spurlabs/spur-chat/internal/domain"
)

// Repository defines the interface for persisting sessions and their
// message logs. Messages are append-only; nothing here mutates or removes
// an existing row.
type Repository interface {
	// NewSession creates a session with a server-generated id.
	NewSession(ctx context.Context) (*domain.Session, error)

	// EnsureSession creates a session with the given id if none exists.
	// It is idempotent: calling it twice with the same id leaves exactly
	// one session row and returns it.
	EnsureSession(ctx context.Context, id string) (*domain.Session, error)

	// GetSession retrieves a session by id. Returns (nil, nil) when the
	// session does not exist.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// AppendMessage durably appends one message to a session's log and
	// returns the stored record. The role must be one of the two known
	// values.
	AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) (*domain.Message, error)

	// ListMessages returns a session's messages ascending by creation
	// time, ties broken by insertion order. When limit > 0 it returns the
	// most recent limit messages, still in ascending order — not the first
	// limit. An unknown session id yields an empty slice, not an error.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]*domain.Message, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
