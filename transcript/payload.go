// Package transcript turns raw chat payloads into renderable parts: a
// markdown body with placeholder tokens, an ordered table of decoded
// tool-execution records, and a trailing relation-id list.
package transcript

import (
	"encoding/json"
	"strings"
	"time"
)

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Status is the lifecycle state reported by an embedded tool execution.
// Values outside the four known states are carried through unchanged so
// newer producers do not break older viewers.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// Known reports whether s is one of the four recognized states.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusRunning, StatusFailed, StatusCompleted:
		return true
	}
	return false
}

// Record is one decoded tool-execution block. Records are created during
// extraction and never mutated afterwards.
type Record struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Result string `json:"result,omitempty"`
	ErrMsg string `json:"err_msg,omitempty"`
}

// TemplateCard is the non-text payload variant: a template reference that
// renders as a fixed summary line and never enters the pipeline.
type TemplateCard struct {
	Name      string `json:"template_name"`
	Introduce string `json:"template_introduce"`
}

// Payload is one entry's raw content: either free text or a template card.
type Payload struct {
	Text string
	Card *TemplateCard
}

// DecodePayload interprets a wire payload. A JSON object carrying a
// template_name becomes a card; everything else is treated as text.
func DecodePayload(raw string) Payload {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var card TemplateCard
		if err := json.Unmarshal([]byte(trimmed), &card); err == nil && card.Name != "" {
			return Payload{Card: &card}
		}
	}
	return Payload{Text: raw}
}

// Entry is a single transcript message.
type Entry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is the ordered message history for one session.
type Transcript struct {
	SessionID string  `json:"session_id"`
	Entries   []Entry `json:"entries"`
}
