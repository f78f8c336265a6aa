// Package chat coordinates a conversational turn: it validates input, keeps
// the session and message log consistent, and recovers generation failures
// into a user-visible fallback.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spurlabs/spur-chat/internal/domain"
	"github.com/spurlabs/spur-chat/internal/store"
)

// FallbackReply is returned when the generation provider fails. It is never
// persisted: the message log only ever contains genuine model output.
const FallbackReply = "Sorry, something went wrong while generating a reply. Please try again in a moment."

// Generator produces a reply from a bounded history plus the latest user
// message. history never contains newMessage.
type Generator interface {
	Generate(ctx context.Context, history []domain.Turn, newMessage string) (string, error)
}

// Result is the outcome of one conversational turn. MessageID is empty when
// the reply is the fallback text (nothing was persisted for it).
type Result struct {
	Reply     string
	MessageID string
}

// Service orchestrates conversation turns over the store and the generator.
type Service struct {
	repo   store.Repository
	gen    Generator
	window *WindowBuilder
	logger *slog.Logger
}

// NewService creates a conversation orchestrator.
func NewService(repo store.Repository, gen Generator, window *WindowBuilder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		gen:    gen,
		window: window,
		logger: logger,
	}
}

// NewSession creates a session with a fresh server-generated id.
func (s *Service) NewSession(ctx context.Context) (*domain.Session, error) {
	sess, err := s.repo.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return sess, nil
}

// History returns the session's full message log ascending. Unknown session
// ids yield an empty history — from the client's perspective "no history yet"
// and "unknown id" are the same thing on first load.
func (s *Service) History(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	messages, err := s.repo.ListMessages(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return messages, nil
}

// HandleMessage processes one conversational turn:
//
//  1. validates input,
//  2. ensures the session exists (idempotent upsert-by-id, tolerating
//     client-minted ids),
//  3. builds the context window from state strictly before this turn,
//  4. durably appends the user message before invoking the generator,
//  5. generates the reply and appends it.
//
// The new user message is passed to the generator only as the explicit
// newMessage argument; the window never duplicates it. A generation failure
// is recovered into FallbackReply with a nil error — only store failures and
// invalid input propagate.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return nil, ErrInvalidRequest
	}

	if _, err := s.repo.EnsureSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	window, err := s.window.Build(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The user turn must be durable even if generation fails.
	if _, err := s.repo.AppendMessage(ctx, sessionID, domain.RoleUser, text); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	reply, err := s.gen.Generate(ctx, window, text)
	if err != nil {
		s.logger.Error("reply generation failed",
			"session_id", sessionID,
			"window_size", len(window),
			"error", err)
		return &Result{Reply: FallbackReply}, nil
	}

	msg, err := s.repo.AppendMessage(ctx, sessionID, domain.RoleAssistant, reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &Result{Reply: reply, MessageID: msg.ID}, nil
}
