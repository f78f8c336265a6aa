package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spurlabs/spur-chat/internal/domain"
)

// HistoryEntry is one replayed message from the server.
type HistoryEntry struct {
	Role      domain.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// API is a thin HTTP client for the chat endpoints.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates an API client for the given base URL (e.g.
// "http://localhost:8080"). Pass nil to use a default client with a timeout
// generous enough for a full generation round trip.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &API{baseURL: baseURL, http: httpClient}
}

// CreateSession requests a new server-generated session id.
func (a *API) CreateSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/session", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := a.do(req, &resp); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: server returned empty sessionId")
	}
	return resp.SessionID, nil
}

// History fetches the full ordered message log for a session.
func (a *API) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/chat/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var entries []HistoryEntry
	if err := a.do(req, &entries); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return entries, nil
}

// SendMessage submits one user message and returns the assistant's reply.
func (a *API) SendMessage(ctx context.Context, sessionID, text string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"sessionId": sessionID,
		"message":   text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat/message", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := a.do(req, &resp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return resp.Reply, nil
}

func (a *API) do(req *http.Request, out interface{}) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
