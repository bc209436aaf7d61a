package types

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one entry in the active conversation transcript.
// The transcript is owned by the session controller; nothing else mutates it.
type ConversationMessage struct {
	ID             string                `json:"id"`
	Role           Role                  `json:"role"`
	Content        string                `json:"content"`
	CreatedAt      time.Time             `json:"created_at"`
	ToolCall       *ToolCall             `json:"tool_call,omitempty"`
	Structured     *StructuredResponse   `json:"structured,omitempty"`
	Disambiguation *EntityDisambiguation `json:"disambiguation,omitempty"`
	IsError        bool                  `json:"is_error,omitempty"`
}

type StructuredKind string

const (
	StructuredKindProposedAction StructuredKind = "proposed_action"
	StructuredKindClarification  StructuredKind = "clarification"
	StructuredKindReport         StructuredKind = "report"
)

// StructuredResponse is the typed payload an assistant turn may carry in
// addition to (or instead of) plain text.
type StructuredResponse struct {
	Kind     StructuredKind  `json:"kind"`
	Action   *ProposedAction `json:"action,omitempty"`
	Question string          `json:"question,omitempty"`
	Report   string          `json:"report,omitempty"`
}

// ProposedAction describes a side effect the agent wants to perform but has
// not committed. A simulated response produces one of these; the matching
// committed response confirms it.
type ProposedAction struct {
	ExecutionID string         `json:"execution_id,omitempty"`
	SequenceKey string         `json:"sequence_key,omitempty"`
	Type        ActionItemType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ContactID   string         `json:"contact_id,omitempty"`
	DealID      string         `json:"deal_id,omitempty"`
	MeetingID   string         `json:"meeting_id,omitempty"`
}
