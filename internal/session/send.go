package session

import (
	"context"
	"strings"
	"time"

	"copilot/internal/autonomous"
	"copilot/internal/classify"
	"copilot/internal/entity"
	"copilot/internal/logging"
	"copilot/internal/reasoning"
	"copilot/internal/timeline"
	"copilot/internal/types"
)

// SendMessage dispatches one user turn in the active mode. Blank input and
// input while a request is already in flight are silent no-ops. The user
// message and a placeholder assistant message are appended before the network
// round trip starts; the placeholder carries the simulated progress timeline
// until the real outcome arrives.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	if c.isLoading {
		c.mu.Unlock()
		return
	}

	mode := c.mode
	if mode == types.ModeAutonomous {
		if result := autonomous.Preflight(text); result != nil {
			c.transcript = append(c.transcript, newMessage(types.RoleUser, text))
			clarification := newMessage(types.RoleAssistant, result.Clarification())
			clarification.Structured = &types.StructuredResponse{
				Kind:     types.StructuredKindClarification,
				Question: result.Clarification(),
			}
			c.transcript = append(c.transcript, clarification)
			c.mu.Unlock()
			c.notify()
			return
		}
	}

	c.transcript = append(c.transcript, newMessage(types.RoleUser, text))

	placeholder := newMessage(types.RoleAssistant, "")
	reqCtx, cancel := context.WithCancel(ctx)
	token := &requestToken{cancel: cancel, placeholderID: placeholder.ID}
	sim := timeline.NewSimulator(timeline.ClassifyRequest(text), func(snapshot types.ToolCall) {
		c.applySimulatorSnapshot(token, snapshot)
	})
	call := sim.Snapshot()
	placeholder.ToolCall = &call
	c.transcript = append(c.transcript, placeholder)

	c.current = token
	c.isLoading = true
	c.simulator = sim

	req := reasoning.SendRequest{Message: text, Mode: mode}
	if !isDraftID(c.conversationID) {
		req.ConversationID = c.conversationID
	}
	conversationID := c.conversationID
	c.mu.Unlock()

	sim.Start(c.simBudget)
	c.notify()

	switch mode {
	case types.ModePlanning:
		go func() {
			resp, err := c.planner.SendMessage(reqCtx, conversationID, text)
			c.completePlanning(token, resp, err)
		}()
	case types.ModeAutonomous:
		if c.loop == nil {
			go func() {
				resp, err := c.transport.Send(reqCtx, req, c.timeout)
				c.completeClassic(token, resp, err)
			}()
			return
		}
		if err := c.loop.SendMessage(reqCtx, req); err != nil {
			c.failWith(token, err)
		}
	default:
		go func() {
			resp, err := c.transport.Send(reqCtx, req, c.timeout)
			c.completeClassic(token, resp, err)
		}()
	}
}

// applySimulatorSnapshot writes a scheduled progress update into the
// placeholder, provided the request it belongs to is still the live one.
func (c *Controller) applySimulatorSnapshot(token *requestToken, snapshot types.ToolCall) {
	c.mu.Lock()
	if c.current != token || token.cancelled.Load() {
		c.mu.Unlock()
		return
	}
	if i := c.findMessage(token.placeholderID); i >= 0 {
		snap := snapshot
		c.transcript[i].ToolCall = &snap
	}
	c.mu.Unlock()
	c.notify()
}

// finishRequest clears the in-flight state for token and halts its simulator.
// It returns false when the token is stale (cancelled or superseded), in which
// case the caller must not touch the transcript.
func (c *Controller) finishRequest(token *requestToken) bool {
	if c.current != token || token.cancelled.Load() {
		return false
	}
	if c.simulator != nil {
		c.simulator.Stop()
	}
	c.current = nil
	c.isLoading = false
	c.simulator = nil
	token.cancel()
	return true
}

func (c *Controller) completeClassic(token *requestToken, resp *reasoning.SendResponse, err error) {
	c.mu.Lock()
	if !c.finishRequest(token) {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.applyFailureLocked(token, err)
		c.mu.Unlock()
		c.notify()
		return
	}
	if resp == nil {
		c.removeMessage(token.placeholderID)
		c.mu.Unlock()
		c.notify()
		return
	}

	i := c.findMessage(token.placeholderID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	msg := &c.transcript[i]
	msg.Content = resp.Content
	msg.Structured = resp.Structured

	snapshot := types.ToolCall{}
	if msg.ToolCall != nil {
		snapshot = msg.ToolCall.Clone()
	}
	mapped := timeline.MapExecutions(snapshot, resp.ToolExecutions)
	msg.ToolCall = &mapped

	if resp.ConversationID != "" {
		c.conversationID = resp.ConversationID
	}

	resolution := entity.FromExecutions(resp.ToolExecutions)
	if resolution != nil {
		if resolution.NeedsClarification() {
			msg.Disambiguation = resolution.Disambiguation
		}
		if resolved := resolution.ResolvedEntity(time.Now().UTC()); resolved != nil {
			if storeErr := c.state.SetResolvedEntity(context.Background(), resolved); storeErr != nil {
				c.logger.Warn("persist resolved entity", logging.F("error", storeErr))
			}
		}
	}

	messageID := msg.ID
	structured := resp.Structured
	c.mu.Unlock()

	if structured != nil && structured.Kind == types.StructuredKindProposedAction && structured.Action != nil && resp.IsSimulation {
		if _, trackErr := c.tracker.Add(context.Background(), *structured.Action, messageID); trackErr != nil {
			c.logger.Warn("track proposed action", logging.F("error", trackErr))
		}
	}
	if reconcileErr := c.tracker.Reconcile(context.Background(), resp); reconcileErr != nil {
		c.logger.Warn("reconcile action items", logging.F("error", reconcileErr))
	}
	c.notify()
}

func (c *Controller) completePlanning(token *requestToken, resp *reasoning.PlannerSendResponse, err error) {
	c.mu.Lock()
	if !c.finishRequest(token) {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.applyFailureLocked(token, err)
		c.mu.Unlock()
		c.notify()
		return
	}
	if resp == nil {
		c.removeMessage(token.placeholderID)
		c.mu.Unlock()
		c.notify()
		return
	}

	if i := c.findMessage(token.placeholderID); i >= 0 {
		msg := &c.transcript[i]
		msg.ToolCall = nil
		switch {
		case resp.Question != "":
			msg.Content = resp.Question
			msg.Structured = &types.StructuredResponse{
				Kind:     types.StructuredKindClarification,
				Question: resp.Question,
			}
		case resp.Report != "":
			msg.Content = resp.Report
			msg.Structured = &types.StructuredResponse{
				Kind:   types.StructuredKindReport,
				Report: resp.Report,
			}
		default:
			msg.Content = strings.Join(resp.Plan, "\n")
		}
	}
	c.mu.Unlock()
	c.notify()
}

// refreshAutonomous streams partial content from the tool loop into the
// placeholder between events.
func (c *Controller) refreshAutonomous() {
	c.mu.Lock()
	token := c.current
	if token == nil || token.cancelled.Load() || c.loop == nil {
		c.mu.Unlock()
		return
	}
	if i := c.findMessage(token.placeholderID); i >= 0 {
		c.transcript[i].Content = c.loop.PartialContent()
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) completeAutonomous(resp *reasoning.SendResponse) {
	c.mu.Lock()
	token := c.current
	c.mu.Unlock()
	if token == nil {
		return
	}
	if resp == nil {
		// The stream ended without a final event. Whatever already streamed
		// in is the answer; losing it would look like a silent failure.
		if partial := strings.TrimSpace(c.loop.PartialContent()); partial != "" {
			resp = &reasoning.SendResponse{Content: partial}
		}
	}
	c.completeClassic(token, resp, nil)
}

func (c *Controller) failAutonomous(err error) {
	c.mu.Lock()
	token := c.current
	c.mu.Unlock()
	if token == nil {
		return
	}
	c.failWith(token, err)
}

func (c *Controller) failWith(token *requestToken, err error) {
	c.mu.Lock()
	if !c.finishRequest(token) {
		c.mu.Unlock()
		return
	}
	c.applyFailureLocked(token, err)
	c.mu.Unlock()
	c.notify()
}

// applyFailureLocked turns the placeholder into a terminal error message. An
// in-flight timeline is finalized in the error state so it stops animating.
func (c *Controller) applyFailureLocked(token *requestToken, err error) {
	i := c.findMessage(token.placeholderID)
	if i < 0 {
		return
	}
	msg := &c.transcript[i]
	msg.Content = classify.UserMessage(err)
	msg.IsError = true
	if msg.ToolCall != nil {
		finalized := timeline.MarkError(*msg.ToolCall)
		msg.ToolCall = &finalized
	}
	c.logger.Warn("request failed",
		logging.F("category", string(classify.Classify(err))),
		logging.F("error", err))
}

// CancelRequest abandons the in-flight request. The placeholder is removed,
// the user message stays, and no error is surfaced: cancellation is a user
// decision, not a failure.
func (c *Controller) CancelRequest() {
	c.mu.Lock()
	token := c.current
	sim := c.simulator
	if token == nil {
		c.mu.Unlock()
		return
	}
	token.cancelled.Store(true)
	c.current = nil
	c.isLoading = false
	c.simulator = nil
	c.removeMessage(token.placeholderID)
	loop := c.loop
	mode := c.mode
	c.mu.Unlock()

	token.cancel()
	if sim != nil {
		sim.Stop()
	}
	if mode == types.ModeAutonomous && loop != nil {
		loop.StopGeneration()
	}
	c.notify()
}
