package types

import "time"

type ToolCallState string

const (
	ToolCallStateInitiating ToolCallState = "initiating"
	ToolCallStateProcessing ToolCallState = "processing"
	ToolCallStateComplete   ToolCallState = "complete"
	ToolCallStateError      ToolCallState = "error"
)

type StepState string

const (
	StepStatePending  StepState = "pending"
	StepStateActive   StepState = "active"
	StepStateComplete StepState = "complete"
)

// RequestCategory tags a user request with the kind of work the assistant is
// expected to do. The set is closed; unrecognized requests fall back to
// CategoryGeneric so every request shows some progress.
type RequestCategory string

const (
	CategoryPipeline         RequestCategory = "pipeline"
	CategoryEmailDraft       RequestCategory = "email_draft"
	CategoryEntityResolution RequestCategory = "entity_resolution"
	CategoryMeetingSchedule  RequestCategory = "meeting_schedule"
	CategoryCampaign         RequestCategory = "campaign"
	CategoryGeneric          RequestCategory = "generic"
)

// Step is one unit of progress within a ToolCall. At most one step is active
// at a time and steps complete in index order.
type Step struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Icon     string         `json:"icon,omitempty"`
	State    StepState      `json:"state"`
	Duration *time.Duration `json:"duration,omitempty"`
}

// ToolCall is the live (and later, final) progress representation for one
// assistant turn. It never regresses from complete.
type ToolCall struct {
	ID        string          `json:"id"`
	Category  RequestCategory `json:"category"`
	State     ToolCallState   `json:"state"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Steps     []Step          `json:"steps"`
}

// Clone returns a deep copy so snapshots handed to observers cannot alias the
// writer's slice.
func (t ToolCall) Clone() ToolCall {
	out := t
	out.Steps = make([]Step, len(t.Steps))
	copy(out.Steps, t.Steps)
	for i := range out.Steps {
		if d := t.Steps[i].Duration; d != nil {
			v := *d
			out.Steps[i].Duration = &v
		}
	}
	if t.EndedAt != nil {
		v := *t.EndedAt
		out.EndedAt = &v
	}
	return out
}
