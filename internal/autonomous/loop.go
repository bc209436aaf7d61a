package autonomous

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"copilot/internal/logging"
	"copilot/internal/reasoning"
	"copilot/internal/types"
)

// StreamOpener opens the tool-loop event stream for one turn.
type StreamOpener interface {
	StreamTurn(ctx context.Context, req reasoning.SendRequest) (<-chan reasoning.StreamEvent, func(), error)
}

// Callbacks are invoked from the stream-consuming goroutine; receivers must
// do their own synchronization (the session controller does).
type Callbacks struct {
	OnUpdate   func()
	OnResponse func(*reasoning.SendResponse)
	OnError    func(error)
}

// Loop drives one autonomous turn at a time: it streams partial thinking and
// tool status, tracks active sub-agents, and hands the final response to the
// controller. Stopping cancels the stream without producing an error.
type Loop struct {
	mu        sync.Mutex
	opener    StreamOpener
	logger    logging.Logger
	callbacks Callbacks

	running      bool
	stopped      bool
	thinking     bool
	streaming    bool
	buffer       strings.Builder
	currentTool  string
	toolsUsed    []string
	activeAgents []string
	messages     []types.ConversationMessage
	cancel       func()
}

func NewLoop(opener StreamOpener, logger logging.Logger, callbacks Callbacks) *Loop {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loop{opener: opener, logger: logger, callbacks: callbacks}
}

// SendMessage opens the stream for one turn. A second call while a turn is
// running is rejected.
func (l *Loop) SendMessage(ctx context.Context, req reasoning.SendRequest) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("a turn is already running")
	}
	l.running = true
	l.stopped = false
	l.thinking = true
	l.streaming = false
	l.buffer.Reset()
	l.currentTool = ""
	l.mu.Unlock()

	events, cancel, err := l.opener.StreamTurn(ctx, req)
	if err != nil {
		l.finish()
		return err
	}

	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	go l.consume(events)
	return nil
}

func (l *Loop) consume(events <-chan reasoning.StreamEvent) {
	var (
		finalResponse *reasoning.SendResponse
		streamErr     error
	)
	for event := range events {
		switch event.Type {
		case reasoning.StreamEventThinking:
			l.set(func() { l.thinking = true; l.streaming = false })
		case reasoning.StreamEventStreaming:
			l.set(func() {
				l.thinking = false
				l.streaming = true
				l.buffer.WriteString(event.Content)
			})
		case reasoning.StreamEventToolStart:
			l.set(func() {
				l.currentTool = event.Tool
				l.toolsUsed = appendUnique(l.toolsUsed, event.Tool)
			})
		case reasoning.StreamEventToolEnd:
			l.set(func() { l.currentTool = "" })
		case reasoning.StreamEventAgentStart:
			l.set(func() { l.activeAgents = appendUnique(l.activeAgents, event.Agent) })
		case reasoning.StreamEventAgentStop:
			l.set(func() { l.activeAgents = remove(l.activeAgents, event.Agent) })
		case reasoning.StreamEventMessage:
			l.appendAssistant(event.Content)
		case reasoning.StreamEventDone:
			finalResponse = event.Response
		case reasoning.StreamEventError:
			streamErr = errors.New(event.Content)
		}
	}

	wasStopped := l.finish()
	if wasStopped {
		// Cancellation is silent: no error, no final response.
		return
	}
	if streamErr != nil {
		l.logger.Warn("autonomous_turn_failed", logging.F("error", streamErr))
		if l.callbacks.OnError != nil {
			l.callbacks.OnError(streamErr)
		}
		return
	}
	if l.callbacks.OnResponse != nil {
		l.callbacks.OnResponse(finalResponse)
	}
}

// StopGeneration cancels the in-flight stream. Safe to call when idle.
func (l *Loop) StopGeneration() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// ClearMessages resets the loop's message buffer and telemetry.
func (l *Loop) ClearMessages() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	l.toolsUsed = nil
	l.activeAgents = nil
	l.buffer.Reset()
	l.currentTool = ""
}

func (l *Loop) IsThinking() bool  { l.mu.Lock(); defer l.mu.Unlock(); return l.thinking }
func (l *Loop) IsStreaming() bool { l.mu.Lock(); defer l.mu.Unlock(); return l.streaming }
func (l *Loop) IsRunning() bool   { l.mu.Lock(); defer l.mu.Unlock(); return l.running }
func (l *Loop) CurrentTool() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentTool
}

func (l *Loop) ToolsUsed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.toolsUsed...)
}

func (l *Loop) ActiveAgents() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.activeAgents...)
}

func (l *Loop) Messages() []types.ConversationMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.ConversationMessage{}, l.messages...)
}

// PartialContent returns whatever has streamed so far this turn.
func (l *Loop) PartialContent() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.String()
}

func (l *Loop) appendAssistant(content string) {
	l.mu.Lock()
	l.messages = append(l.messages, types.ConversationMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	l.mu.Unlock()
	l.notify()
}

func (l *Loop) set(apply func()) {
	l.mu.Lock()
	apply()
	l.mu.Unlock()
	l.notify()
}

func (l *Loop) finish() (wasStopped bool) {
	l.mu.Lock()
	wasStopped = l.stopped
	l.running = false
	l.thinking = false
	l.streaming = false
	l.currentTool = ""
	l.activeAgents = nil
	l.cancel = nil
	l.mu.Unlock()
	l.notify()
	return wasStopped
}

func (l *Loop) notify() {
	if l.callbacks.OnUpdate != nil {
		l.callbacks.OnUpdate()
	}
}

func appendUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func remove(list []string, value string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}
