package session

import (
	"context"
	"errors"
	"strings"

	"copilot/internal/logging"
	"copilot/internal/types"
)

// SetMode switches the execution mode. Switching is a hard barrier: the
// in-flight request (if any) is cancelled, the transcript is cleared, and a
// fresh draft conversation begins. Action items and the resolved entity are
// session-wide and survive the switch.
func (c *Controller) SetMode(mode types.Mode) {
	if normalized, ok := types.NormalizeMode(string(mode)); ok {
		mode = normalized
	} else {
		mode = types.ModeClassic
	}

	c.mu.Lock()
	if mode == c.mode {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.CancelRequest()

	c.mu.Lock()
	c.mode = mode
	c.transcript = nil
	c.conversationID = newDraftID()
	c.mu.Unlock()

	if c.planner != nil {
		c.planner.Reset()
	}
	if c.loop != nil {
		c.loop.ClearMessages()
	}
	if err := c.state.SetLastMode(context.Background(), mode); err != nil {
		c.logger.Warn("persist last mode", logging.F("error", err))
	}
	c.notify()
}

// EnableAutonomousMode is the one-way switch the approval flow uses.
func (c *Controller) EnableAutonomousMode() {
	c.SetMode(types.ModeAutonomous)
}

func (c *Controller) AutonomousEnabled() bool {
	return c.Mode() == types.ModeAutonomous
}

// RestoreLastMode applies the persisted mode from a previous run, if any.
func (c *Controller) RestoreLastMode(ctx context.Context) {
	mode, ok, err := c.state.LastMode(ctx)
	if err != nil {
		c.logger.Warn("load last mode", logging.F("error", err))
		return
	}
	if ok {
		c.SetMode(mode)
	}
}

// StartNewChat abandons the current conversation and begins a fresh draft.
// The draft has no server-side identity until the first response names one.
func (c *Controller) StartNewChat() {
	c.CancelRequest()

	c.mu.Lock()
	c.transcript = nil
	c.conversationID = newDraftID()
	c.mu.Unlock()

	if c.planner != nil {
		c.planner.Reset()
	}
	if c.loop != nil {
		c.loop.ClearMessages()
	}
	c.notify()
}

// LoadConversation replaces the transcript with a persisted conversation's
// history. Draft ids only exist client-side, so loading one is a no-op.
func (c *Controller) LoadConversation(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" || isDraftID(id) {
		return nil
	}

	c.CancelRequest()

	resp, err := c.transport.History(ctx, id, c.pageSize)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conversationID = id
	c.transcript = append([]types.ConversationMessage{}, resp.Messages...)
	c.mu.Unlock()
	c.notify()
	return nil
}

var ErrNotPlanning = errors.New("session: no planning session active")

// RespondToQuestion forwards the user's answer to the paused plan. Outside
// planning mode, or while a request is in flight, nothing happens.
func (c *Controller) RespondToQuestion(ctx context.Context, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}

	c.mu.Lock()
	if c.mode != types.ModePlanning || c.planner == nil {
		c.mu.Unlock()
		return ErrNotPlanning
	}
	if c.isLoading {
		c.mu.Unlock()
		return nil
	}

	c.transcript = append(c.transcript, newMessage(types.RoleUser, answer))
	placeholder := newMessage(types.RoleAssistant, "")
	c.transcript = append(c.transcript, placeholder)

	reqCtx, cancel := context.WithCancel(ctx)
	token := &requestToken{cancel: cancel, placeholderID: placeholder.ID}
	c.current = token
	c.isLoading = true
	c.mu.Unlock()
	c.notify()

	go func() {
		resp, err := c.planner.RespondToQuestion(reqCtx, answer)
		c.completePlanning(token, resp, err)
	}()
	return nil
}
