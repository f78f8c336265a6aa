// Package domain contains core domain types for the support chat service.
package domain

import (
	"time"
)

// Session represents a single persistent conversation thread. The id is an
// opaque string; clients may mint their own or ask the server for one.
// Sessions are never updated or deleted once created.
type Session struct {
	ID        string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}
