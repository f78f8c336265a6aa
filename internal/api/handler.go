// Package api provides HTTP handlers for the chat API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spurlabs/spur-chat/internal/chat"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves the chat HTTP surface.
type Handler struct {
	chat *chat.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *chat.Service) *Handler {
	return &Handler{chat: svc}
}

// RegisterRoutes mounts the chat endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/session", h.createSession)
	r.Get("/api/chat/{sessionID}", h.getHistory)
	r.Post("/api/chat/message", h.postMessage)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

type historyEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type messageResponse struct {
	Reply     string `json:"reply"`
	MessageID string `json:"messageId,omitempty"`
}

// createSession handles POST /api/session. It always creates a new session.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.chat.NewSession(r.Context())
	if err != nil {
		slog.Error("failed to create session", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	JSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID})
}

// getHistory handles GET /api/chat/{sessionID}. Unknown ids return an empty
// array, not an error.
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load history", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	entries := make([]historyEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, historyEntry{
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	JSON(w, http.StatusOK, entries)
}

// postMessage handles POST /api/chat/message. Provider hiccups are an
// expected condition: the orchestrator recovers them into an apologetic
// reply and this endpoint still answers 200. Only malformed input (400) and
// store failures (500) surface as errors.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.chat.HandleMessage(r.Context(), req.SessionID, req.Message)
	switch {
	case errors.Is(err, chat.ErrInvalidRequest):
		Error(w, http.StatusBadRequest, "message and sessionId are required")
	case err != nil:
		slog.Error("failed to handle message", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "something went wrong, please try again")
	default:
		JSON(w, http.StatusOK, messageResponse{Reply: res.Reply, MessageID: res.MessageID})
	}
}
