package domain

import "time"

// Role tags who produced a turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one recorded message in a channel's history. Immutable once created.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// NewUserTurn creates a user turn
func NewUserTurn(content string, at time.Time) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: at}
}

// NewAssistantTurn creates an assistant turn
func NewAssistantTurn(content string, at time.Time) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: at}
}
