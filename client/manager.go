// Package client implements the widget-side session manager: it keeps the
// session id across restarts, lazily creates a session, replays history, and
// guards one in-flight send at a time. It is independent of any rendering
// technology; a UI reads Messages and State after each operation.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spurlabs/spur-chat/internal/domain"
)

// State is the session manager lifecycle state.
type State int

const (
	// StateUninitialized means Init has not completed.
	StateUninitialized State = iota
	// StateCreating means a new session id is being requested.
	StateCreating
	// StateHydrating means stored history is being replayed.
	StateHydrating
	// StateReady means the conversation can accept a send.
	StateReady
	// StateSending means a send is in flight; further sends are rejected.
	StateSending
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreating:
		return "creating"
	case StateHydrating:
		return "hydrating"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// sendFailedText is shown in place of a reply when a send fails. It is local
// to the widget and never reaches the server.
const sendFailedText = "Failed to send message. Please check your connection."

var (
	// ErrBusy is returned while a send is already in flight.
	ErrBusy = errors.New("a send is already in flight")
	// ErrNotReady is returned when the manager has not been initialized.
	ErrNotReady = errors.New("session manager is not ready")
	// ErrEmptyMessage is returned for whitespace-only input.
	ErrEmptyMessage = errors.New("message is empty")
)

// DisplayMessage is one entry of the displayed conversation. Local marks
// messages synthesized by the widget itself (send-failure notices) that are
// not part of the durable server-side log.
type DisplayMessage struct {
	Role      domain.Role
	Content   string
	CreatedAt time.Time
	Local     bool
}

// SessionManager drives a single conversation for one widget instance.
type SessionManager struct {
	api     *API
	storage Storage

	mu        sync.Mutex
	state     State
	sessionID string
	messages  []DisplayMessage
}

// NewSessionManager creates an uninitialized SessionManager.
func NewSessionManager(api *API, storage Storage) *SessionManager {
	return &SessionManager{api: api, storage: storage}
}

// Init brings the manager to Ready: it reuses a stored session id and replays
// its history, or creates and persists a fresh session. On failure the
// manager returns to Uninitialized so Init can be retried.
func (m *SessionManager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return nil
	}

	stored, err := m.storage.Load()
	if err != nil || stored == "" {
		m.state = StateCreating
	} else {
		m.state = StateHydrating
	}
	m.mu.Unlock()

	if stored != "" {
		return m.hydrate(ctx, stored)
	}
	return m.create(ctx)
}

func (m *SessionManager) hydrate(ctx context.Context, sessionID string) error {
	entries, err := m.api.History(ctx, sessionID)
	if err != nil {
		m.setState(StateUninitialized)
		return fmt.Errorf("hydrate session: %w", err)
	}

	messages := make([]DisplayMessage, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, DisplayMessage{
			Role:      e.Role,
			Content:   e.Content,
			CreatedAt: e.CreatedAt,
		})
	}

	m.mu.Lock()
	m.sessionID = sessionID
	m.messages = messages
	m.state = StateReady
	m.mu.Unlock()
	return nil
}

func (m *SessionManager) create(ctx context.Context) error {
	sessionID, err := m.api.CreateSession(ctx)
	if err != nil {
		m.setState(StateUninitialized)
		return fmt.Errorf("create session: %w", err)
	}
	if err := m.storage.Save(sessionID); err != nil {
		m.setState(StateUninitialized)
		return fmt.Errorf("persist session id: %w", err)
	}

	m.mu.Lock()
	m.sessionID = sessionID
	m.messages = nil
	m.state = StateReady
	m.mu.Unlock()
	return nil
}

// Send submits one user message. The user's text is appended optimistically
// before the round trip; on failure a local error notice is appended and the
// manager stays continuable — no automatic retry. While a send is in flight
// further sends return ErrBusy.
func (m *SessionManager) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	m.mu.Lock()
	switch m.state {
	case StateSending:
		m.mu.Unlock()
		return ErrBusy
	case StateReady:
		// proceed
	default:
		m.mu.Unlock()
		return ErrNotReady
	}
	m.state = StateSending
	m.messages = append(m.messages, DisplayMessage{
		Role:      domain.RoleUser,
		Content:   trimmed,
		CreatedAt: time.Now(),
	})
	sessionID := m.sessionID
	m.mu.Unlock()

	reply, err := m.api.SendMessage(ctx, sessionID, trimmed)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateReady
	if err != nil {
		m.messages = append(m.messages, DisplayMessage{
			Role:      domain.RoleAssistant,
			Content:   sendFailedText,
			CreatedAt: time.Now(),
			Local:     true,
		})
		return fmt.Errorf("send failed: %w", err)
	}
	m.messages = append(m.messages, DisplayMessage{
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
	return nil
}

// State returns the current lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the active session id, or "" before Init completes.
func (m *SessionManager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Messages returns a snapshot of the displayed conversation.
func (m *SessionManager) Messages() []DisplayMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DisplayMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *SessionManager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
