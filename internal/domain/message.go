package domain

import (
	"fmt"
	"time"
)

// Role identifies who authored a message. Exactly two values exist; anything
// else is rejected at the boundary where it appears.
type Role string

const (
	// RoleUser marks a message written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message generated by the model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Message is one immutable entry in a session's conversation log.
// Within a session, (CreatedAt, insertion order) defines conversational order.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is the role-normalized unit submitted to the generation provider.
type Turn struct {
	Role    Role
	Content string
}
