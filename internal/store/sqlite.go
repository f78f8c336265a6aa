package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spurlabs/spur-chat/internal/domain"
	"github.com/spurlabs/spur-chat/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	appendMaxRetries = 3
	appendBaseDelay  = 100 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// NewSession creates a session with a server-generated id.
func (s *SQLiteStore) NewSession(ctx context.Context) (*domain.Session, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?)`,
		sess.ID, now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// EnsureSession creates a session with the given id if none exists.
func (s *SQLiteStore) EnsureSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `
	INSERT INTO sessions (id, created_at) VALUES (?, ?)
	ON CONFLICT(id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, id, time.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("ensure session: %s missing after insert", id)
	}
	return sess, nil
}

// GetSession retrieves a session by id. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM sessions WHERE id = ?`, id)

	var sess domain.Session
	var createdAt int64
	err := row.Scan(&sess.ID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.CreatedAt = time.UnixMilli(createdAt)
	return &sess, nil
}

// AppendMessage durably appends one message to a session's log.
// Retries with exponential backoff when SQLite reports a busy database.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) (*domain.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("append message: invalid role %q", role)
	}

	now := time.Now()
	msg := &domain.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}

	var err error
	for i := 0; i < appendMaxRetries; i++ {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			msg.ID, msg.SessionID, string(msg.Role), msg.Content, now.UnixMilli(),
		)
		if err == nil {
			return msg, nil
		}
		if !shared.IsSQLiteBusy(err) || i == appendMaxRetries-1 {
			break
		}
		delay := appendBaseDelay * time.Duration(1<<i)
		slog.Debug("AppendMessage hit busy database, retrying",
			"session_id", sessionID,
			"attempt", i+1,
			"delay", delay)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("insert message: %w", err)
}

// ListMessages returns a session's messages ascending by (created_at, seq).
// With limit > 0 it returns the most recent limit messages, still ascending.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC, seq ASC`
	args := []interface{}{sessionID}

	if limit > 0 {
		// Inner query selects the newest rows, outer restores ascending order.
		query = `
		SELECT id, session_id, role, content, created_at FROM (
			SELECT seq, id, session_id, role, content, created_at
			FROM messages WHERE session_id = ?
			ORDER BY created_at DESC, seq DESC LIMIT ?
		) ORDER BY created_at ASC, seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close message rows", "error", closeErr)
		}
	}()

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var role string
		var createdAt int64

		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		msg.Role = parsed
		msg.CreatedAt = time.UnixMilli(createdAt)
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
