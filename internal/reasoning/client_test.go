package reasoning

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendUsesPerCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/assistant/send" {
			http.NotFound(w, r)
			return
		}
		time.Sleep(120 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"hello","conversation_id":"c-1"}`))
	}))
	defer server.Close()

	c := NewWithToken(server.URL, "token")
	c.http.Timeout = 20 * time.Millisecond

	resp, err := c.Send(context.Background(), SendRequest{Message: "hi"}, 2*time.Second)
	if err != nil {
		t.Fatalf("Send should not use the default client timeout: %v", err)
	}
	if resp.Content != "hello" || resp.ConversationID != "c-1" {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	c := NewWithToken(server.URL, "token")
	_, err := c.Send(context.Background(), SendRequest{Message: "hi"}, 0)
	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "rate limit exceeded" {
		t.Fatalf("unexpected api error: %#v", apiErr)
	}
}

func TestSendAbortsOnCancel(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	c := NewWithToken(server.URL, "token")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	start := time.Now()
	if _, err := c.Send(ctx, SendRequest{Message: "hi"}, 5*time.Second); err == nil {
		t.Fatalf("expected cancellation error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancel did not abort promptly, took %v", elapsed)
	}
}

func TestHistoryRejectsEmptyID(t *testing.T) {
	c := NewWithToken("http://127.0.0.1:0", "token")
	if _, err := c.History(context.Background(), "  ", 50); err == nil {
		t.Fatalf("expected error for empty conversation id")
	}
}

func TestStreamTurnDeliversEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/assistant/stream" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range []string{
			`data: {"type":"thinking"}`,
			`data: {"type":"tool_start","tool":"search_crm"}`,
			`data: {"type":"done"}`,
		} {
			_, _ = w.Write([]byte(frame + "\n\n"))
			flusher.Flush()
		}
	}))
	defer server.Close()

	c := NewWithToken(server.URL, "token")
	events, cancel, err := c.StreamTurn(context.Background(), SendRequest{Message: "go"})
	if err != nil {
		t.Fatalf("StreamTurn: %v", err)
	}
	defer cancel()

	var got []string
	for event := range events {
		got = append(got, event.Type)
	}
	if len(got) != 3 || got[0] != StreamEventThinking || got[1] != StreamEventToolStart || got[2] != StreamEventDone {
		t.Fatalf("unexpected events: %v", got)
	}
}
