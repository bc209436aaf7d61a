package autonomous

import (
	"context"
	"sync"
	"testing"
	"time"

	"copilot/internal/logging"
	"copilot/internal/reasoning"
)

type scriptedOpener struct {
	events    []reasoning.StreamEvent
	hold      chan struct{}
	cancelled bool
	mu        sync.Mutex
}

func (o *scriptedOpener) StreamTurn(ctx context.Context, req reasoning.SendRequest) (<-chan reasoning.StreamEvent, func(), error) {
	ch := make(chan reasoning.StreamEvent, len(o.events))
	done := make(chan struct{})
	cancel := func() {
		o.mu.Lock()
		if !o.cancelled {
			o.cancelled = true
			close(done)
		}
		o.mu.Unlock()
	}
	go func() {
		defer close(ch)
		for _, event := range o.events {
			select {
			case ch <- event:
			case <-done:
				return
			}
		}
		if o.hold != nil {
			select {
			case <-o.hold:
			case <-done:
			}
		}
	}()
	return ch, cancel, nil
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func TestLoopTracksStreamingState(t *testing.T) {
	opener := &scriptedOpener{
		events: []reasoning.StreamEvent{
			{Type: reasoning.StreamEventThinking},
			{Type: reasoning.StreamEventToolStart, Tool: "search_crm"},
			{Type: reasoning.StreamEventAgentStart, Agent: "research"},
			{Type: reasoning.StreamEventStreaming, Content: "Looking at "},
			{Type: reasoning.StreamEventStreaming, Content: "your pipeline"},
			{Type: reasoning.StreamEventToolEnd, Tool: "search_crm"},
			{Type: reasoning.StreamEventMessage, Content: "Here is your pipeline."},
			{Type: reasoning.StreamEventDone, Response: &reasoning.SendResponse{Content: "Here is your pipeline.", ConversationID: "c-1"}},
		},
	}

	var (
		mu       sync.Mutex
		response *reasoning.SendResponse
	)
	loop := NewLoop(opener, logging.Nop(), Callbacks{
		OnResponse: func(resp *reasoning.SendResponse) {
			mu.Lock()
			response = resp
			mu.Unlock()
		},
	})

	if err := loop.SendMessage(context.Background(), reasoning.SendRequest{Message: "show pipeline"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return response != nil
	})

	if loop.IsRunning() || loop.IsThinking() || loop.IsStreaming() {
		t.Fatalf("loop state not reset after done")
	}
	if got := loop.ToolsUsed(); len(got) != 1 || got[0] != "search_crm" {
		t.Fatalf("unexpected tools used: %v", got)
	}
	if len(loop.ActiveAgents()) != 0 {
		t.Fatalf("active agents should clear on finish")
	}
	if loop.PartialContent() != "Looking at your pipeline" {
		t.Fatalf("unexpected partial content: %q", loop.PartialContent())
	}
	messages := loop.Messages()
	if len(messages) != 1 || messages[0].Content != "Here is your pipeline." {
		t.Fatalf("unexpected messages: %#v", messages)
	}
	mu.Lock()
	defer mu.Unlock()
	if response.ConversationID != "c-1" {
		t.Fatalf("unexpected final response: %#v", response)
	}
}

func TestStopGenerationIsSilent(t *testing.T) {
	opener := &scriptedOpener{
		events: []reasoning.StreamEvent{{Type: reasoning.StreamEventThinking}},
		hold:   make(chan struct{}),
	}
	var (
		mu        sync.Mutex
		responded bool
		errored   bool
	)
	loop := NewLoop(opener, logging.Nop(), Callbacks{
		OnResponse: func(*reasoning.SendResponse) { mu.Lock(); responded = true; mu.Unlock() },
		OnError:    func(error) { mu.Lock(); errored = true; mu.Unlock() },
	})

	if err := loop.SendMessage(context.Background(), reasoning.SendRequest{Message: "go"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	waitFor(t, loop.IsThinking)

	loop.StopGeneration()
	waitFor(t, func() bool { return !loop.IsRunning() })

	mu.Lock()
	defer mu.Unlock()
	if responded || errored {
		t.Fatalf("cancellation must be silent: responded=%v errored=%v", responded, errored)
	}
}

func TestErrorEventRoutesToOnError(t *testing.T) {
	opener := &scriptedOpener{
		events: []reasoning.StreamEvent{{Type: reasoning.StreamEventError, Content: "rate limit exceeded"}},
	}
	var (
		mu  sync.Mutex
		got error
	)
	loop := NewLoop(opener, logging.Nop(), Callbacks{
		OnError: func(err error) { mu.Lock(); got = err; mu.Unlock() },
	})
	if err := loop.SendMessage(context.Background(), reasoning.SendRequest{Message: "go"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	})
}

func TestSecondSendWhileRunningRejected(t *testing.T) {
	opener := &scriptedOpener{hold: make(chan struct{})}
	loop := NewLoop(opener, logging.Nop(), Callbacks{})
	if err := loop.SendMessage(context.Background(), reasoning.SendRequest{Message: "one"}); err != nil {
		t.Fatalf("first SendMessage: %v", err)
	}
	if err := loop.SendMessage(context.Background(), reasoning.SendRequest{Message: "two"}); err == nil {
		t.Fatalf("expected rejection while a turn is running")
	}
	loop.StopGeneration()
}
