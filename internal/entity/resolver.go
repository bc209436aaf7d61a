package entity

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"copilot/internal/reasoning"
	"copilot/internal/types"
)

// ToolName is the well-known lookup tool whose results carry identity
// candidates.
const ToolName = "resolve_contact"

type resolvePayload struct {
	Query      string             `json:"query"`
	Ambiguous  bool               `json:"ambiguous"`
	Confidence string             `json:"confidence"`
	Candidates []resolveCandidate `json:"candidates"`
}

type resolveCandidate struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Role         string `json:"role"`
	RecencyScore int    `json:"recency_score"`
	Source       string `json:"source"`
}

// Resolution is the outcome of inspecting one turn's executions: the block to
// show (if any) plus the top candidate for the session-wide resolved-entity
// slot.
type Resolution struct {
	Disambiguation *types.EntityDisambiguation
	Top            *types.EntityCandidate
}

// FromExecutions inspects a turn's tool executions for a resolve_contact
// result. More than one candidate (or an explicit ambiguity flag) always
// yields needs_clarification so the user can override the backend's pick,
// whatever confidence the backend reported.
func FromExecutions(execs []reasoning.ToolExecution) *Resolution {
	for _, exec := range execs {
		if !strings.EqualFold(strings.TrimSpace(exec.ToolName), ToolName) || !exec.Success {
			continue
		}
		if resolution := fromResult(exec.Result); resolution != nil {
			return resolution
		}
	}
	return nil
}

func fromResult(raw json.RawMessage) *Resolution {
	if len(raw) == 0 {
		return nil
	}
	var payload resolvePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	if len(payload.Candidates) == 0 {
		return nil
	}

	candidates := make([]types.EntityCandidate, len(payload.Candidates))
	for i, c := range payload.Candidates {
		candidates[i] = types.EntityCandidate{
			Name:         c.Name,
			Email:        c.Email,
			Company:      c.Company,
			Role:         c.Role,
			RecencyScore: c.RecencyScore,
			Source:       normalizeSource(c.Source),
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RecencyScore > candidates[j].RecencyScore
	})

	// A single unambiguous candidate is high confidence no matter what the
	// backend reported; with several candidates the user always chooses.
	confidence := types.ConfidenceHigh
	if len(candidates) > 1 || payload.Ambiguous {
		confidence = types.ConfidenceNeedsClarification
	}

	top := candidates[0]
	return &Resolution{
		Disambiguation: &types.EntityDisambiguation{
			Query:      payload.Query,
			Candidates: candidates,
			Confidence: confidence,
		},
		Top: &top,
	}
}

// ResolvedEntity converts the top candidate into the session-wide slot value.
func (r *Resolution) ResolvedEntity(now time.Time) *types.ResolvedEntity {
	if r == nil || r.Top == nil {
		return nil
	}
	return &types.ResolvedEntity{
		Name:       r.Top.Name,
		Email:      r.Top.Email,
		Company:    r.Top.Company,
		Source:     r.Top.Source,
		ResolvedAt: now,
	}
}

// NeedsClarification reports whether the block must be surfaced for user
// choice.
func (r *Resolution) NeedsClarification() bool {
	return r != nil && r.Disambiguation != nil &&
		r.Disambiguation.Confidence == types.ConfidenceNeedsClarification
}

func normalizeSource(raw string) types.EntitySource {
	switch types.EntitySource(strings.ToLower(strings.TrimSpace(raw))) {
	case types.EntitySourceMeeting:
		return types.EntitySourceMeeting
	case types.EntitySourceCalendar:
		return types.EntitySourceCalendar
	case types.EntitySourceEmail:
		return types.EntitySourceEmail
	default:
		return types.EntitySourceCRM
	}
}
