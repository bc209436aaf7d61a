package types

import "time"

// EntitySource tags where a candidate identity was observed.
type EntitySource string

const (
	EntitySourceCRM      EntitySource = "crm"
	EntitySourceMeeting  EntitySource = "meeting"
	EntitySourceCalendar EntitySource = "calendar"
	EntitySourceEmail    EntitySource = "email"
)

type Confidence string

const (
	ConfidenceHigh               Confidence = "high"
	ConfidenceMedium             Confidence = "medium"
	ConfidenceNeedsClarification Confidence = "needs_clarification"
)

type EntityCandidate struct {
	Name         string       `json:"name"`
	Email        string       `json:"email,omitempty"`
	Company      string       `json:"company,omitempty"`
	Role         string       `json:"role,omitempty"`
	RecencyScore int          `json:"recency_score"`
	Source       EntitySource `json:"source"`
}

// EntityDisambiguation carries every candidate for a name lookup so the user
// can override an automatic choice. More than one candidate always means
// needs_clarification, whatever the backend claimed.
type EntityDisambiguation struct {
	Query      string            `json:"query"`
	Candidates []EntityCandidate `json:"candidates"`
	Confidence Confidence        `json:"confidence"`
}

// ResolvedEntity is the session-wide "currently resolved entity" slot any
// panel can read, independent of whether disambiguation was shown.
type ResolvedEntity struct {
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Company    string       `json:"company,omitempty"`
	Source     EntitySource `json:"source"`
	ResolvedAt time.Time    `json:"resolved_at"`
}
