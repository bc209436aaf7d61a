package timeline

import (
	"strconv"
	"strings"
	"time"

	"copilot/internal/reasoning"
	"copilot/internal/types"
)

// toolLabels maps raw tool names to human phrases so the timeline never leaks
// implementation detail.
var toolLabels = map[string]string{
	"search_crm":       "Searching CRM records",
	"resolve_contact":  "Resolving the contact",
	"fetch_pipeline":   "Fetching your pipeline",
	"fetch_deal":       "Pulling deal details",
	"draft_email":      "Drafting the email",
	"send_email":       "Sending the email",
	"check_calendar":   "Checking the calendar",
	"schedule_meeting": "Scheduling the meeting",
	"send_slack":       "Posting to Slack",
	"create_task":      "Creating the task",
	"search_email":     "Searching mail",
	"summarize":        "Summarizing results",
}

var capabilityIcons = map[string]string{
	"crm":       "crm",
	"email":     "mail",
	"calendar":  "calendar",
	"messaging": "chat",
	"search":    "search",
}

// MapExecutions converts the backend's raw tool-execution records into the
// final ToolCall for a turn, superseding whatever the simulator guessed.
// Telemetry only arrives after the fact, so every mapped step is complete.
//
// The generic fallback category keeps the simulated steps instead (marked
// complete): raw tool names are not worth showing for a request we could not
// classify.
func MapExecutions(call types.ToolCall, execs []reasoning.ToolExecution) types.ToolCall {
	out := call.Clone()
	out.State = types.ToolCallStateComplete
	now := time.Now().UTC()
	out.EndedAt = &now

	if call.Category == types.CategoryGeneric || len(execs) == 0 {
		for i := range out.Steps {
			out.Steps[i].State = types.StepStateComplete
		}
		return out
	}

	steps := make([]types.Step, len(execs))
	for i, exec := range execs {
		duration := exec.Latency()
		steps[i] = types.Step{
			ID:       out.ID + "-t" + strconv.Itoa(i+1),
			Label:    labelFor(exec.ToolName),
			Icon:     iconFor(exec),
			State:    types.StepStateComplete,
			Duration: &duration,
		}
	}
	out.Steps = steps
	return out
}

// MarkError finalizes an in-flight ToolCall after a failure without touching
// the step list.
func MarkError(call types.ToolCall) types.ToolCall {
	out := call.Clone()
	out.State = types.ToolCallStateError
	now := time.Now().UTC()
	out.EndedAt = &now
	return out
}

func labelFor(toolName string) string {
	name := strings.ToLower(strings.TrimSpace(toolName))
	if label, ok := toolLabels[name]; ok {
		return label
	}
	if name == "" {
		return "Working on it"
	}
	return "Running " + strings.ReplaceAll(name, "_", " ")
}

func iconFor(exec reasoning.ToolExecution) string {
	if icon, ok := capabilityIcons[strings.ToLower(strings.TrimSpace(exec.Capability))]; ok {
		return icon
	}
	if provider := strings.ToLower(strings.TrimSpace(exec.Provider)); provider != "" {
		return provider
	}
	return "gear"
}
