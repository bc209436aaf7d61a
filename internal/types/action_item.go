package types

import "time"

type ActionItemStatus string

const (
	ActionItemStatusPending   ActionItemStatus = "pending"
	ActionItemStatusConfirmed ActionItemStatus = "confirmed"
	ActionItemStatusExpired   ActionItemStatus = "expired"
)

type ActionItemType string

const (
	ActionItemTypeEmail   ActionItemType = "email"
	ActionItemTypeTask    ActionItemType = "task"
	ActionItemTypeMeeting ActionItemType = "meeting"
	ActionItemTypeSlack   ActionItemType = "slack"
	ActionItemTypeOther   ActionItemType = "other"
)

// ActionItem records an agent-proposed side effect awaiting approval. Items
// outlive the conversation that produced them; the store spans the session.
type ActionItem struct {
	ID          string           `json:"id"`
	SequenceKey string           `json:"sequence_key,omitempty"`
	ExecutionID string           `json:"execution_id,omitempty"`
	MessageID   string           `json:"message_id,omitempty"`
	Type        ActionItemType   `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	ContactID   string           `json:"contact_id,omitempty"`
	DealID      string           `json:"deal_id,omitempty"`
	MeetingID   string           `json:"meeting_id,omitempty"`
	Status      ActionItemStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   time.Time        `json:"expires_at"`
}

// DedupKey is the identity used to collapse repeated previews of the same
// action. Execution identity wins; otherwise the sequence key scoped to the
// transcript message that carried the proposal.
func (a ActionItem) DedupKey() string {
	if a.ExecutionID != "" {
		return "exec:" + a.ExecutionID
	}
	return "seq:" + a.SequenceKey + ":" + a.MessageID
}
