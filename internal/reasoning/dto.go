package reasoning

import (
	"encoding/json"
	"time"

	"copilot/internal/types"
)

// SendRequest is one user turn dispatched to the reasoning service.
// ConversationID is omitted for conversations the server has not persisted
// yet; the server's response carries the authoritative id.
type SendRequest struct {
	Message        string            `json:"message"`
	Context        map[string]string `json:"context,omitempty"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Mode           types.Mode        `json:"mode,omitempty"`
}

// ToolExecution is one raw tool run the service performed while answering.
type ToolExecution struct {
	ToolName   string          `json:"tool_name"`
	Capability string          `json:"capability,omitempty"`
	Provider   string          `json:"provider,omitempty"`
	Success    bool            `json:"success"`
	LatencyMS  int64           `json:"latency_ms"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func (e ToolExecution) Latency() time.Duration {
	return time.Duration(e.LatencyMS) * time.Millisecond
}

type SendResponse struct {
	Content         string                    `json:"content"`
	Recommendations []string                  `json:"recommendations,omitempty"`
	Structured      *types.StructuredResponse `json:"structured_response,omitempty"`
	ToolExecutions  []ToolExecution           `json:"tool_executions,omitempty"`
	ConversationID  string                    `json:"conversation_id,omitempty"`
	SequenceKey     string                    `json:"sequence_key,omitempty"`
	IsSimulation    bool                      `json:"is_simulation,omitempty"`
	Error           string                    `json:"error,omitempty"`
}

type HistoryResponse struct {
	Messages []types.ConversationMessage `json:"messages"`
}

// PlannerSendResponse is the planning-agent contract: either a clarifying
// question that pauses the plan, or a finished plan/report.
type PlannerSendResponse struct {
	Question string   `json:"question,omitempty"`
	Plan     []string `json:"plan,omitempty"`
	Report   string   `json:"report,omitempty"`
	Done     bool     `json:"done"`
}

// StreamEvent is one SSE frame from the autonomous tool loop.
type StreamEvent struct {
	Type      string          `json:"type"`
	Content   string          `json:"content,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Agent     string          `json:"agent,omitempty"`
	Execution *ToolExecution  `json:"execution,omitempty"`
	Response  *SendResponse   `json:"response,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

const (
	StreamEventThinking   = "thinking"
	StreamEventStreaming  = "streaming"
	StreamEventToolStart  = "tool_start"
	StreamEventToolEnd    = "tool_end"
	StreamEventAgentStart = "agent_start"
	StreamEventAgentStop  = "agent_stop"
	StreamEventMessage    = "message"
	StreamEventDone       = "done"
	StreamEventError      = "error"
)
