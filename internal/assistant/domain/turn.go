package domain

import "time"

// Role attributes a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a diagram-bound conversation.
type Turn struct {
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	IsCodeResponse bool      `json:"is_code_response,omitempty"`
}

// Identity selects the persistence tier for a conversation. Durable storage
// requires both a diagram id and a verified user; anything else lives in the
// volatile session tier.
type Identity struct {
	DiagramID string
	UserID    string
	SessionID string
}

// Durable reports whether the durable tier is authoritative for this identity.
func (id Identity) Durable() bool {
	return id.DiagramID != "" && id.UserID != ""
}

// Trim bounds a turn list to the leading system turn (when present) plus the
// maxTurns most recent non-system turns. Older turns are discarded
// irreversibly.
func Trim(turns []Turn, maxTurns int) []Turn {
	if maxTurns < 0 {
		maxTurns = 0
	}

	rest := turns
	var system *Turn
	if len(turns) > 0 && turns[0].Role == RoleSystem {
		system = &turns[0]
		rest = turns[1:]
	}

	if len(rest) > maxTurns {
		rest = rest[len(rest)-maxTurns:]
	}

	if system == nil {
		return rest
	}

	out := make([]Turn, 0, len(rest)+1)
	out = append(out, *system)
	return append(out, rest...)
}
