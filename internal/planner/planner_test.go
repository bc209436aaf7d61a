package planner

import (
	"context"
	"errors"
	"testing"

	"copilot/internal/logging"
	"copilot/internal/reasoning"
)

type fakeTransport struct {
	sendResponses []*reasoning.PlannerSendResponse
	sendErr       error
	respondResp   *reasoning.PlannerSendResponse
	respondErr    error
	sendCalls     int
	respondCalls  int
	lastAnswer    string
}

func (f *fakeTransport) Send(ctx context.Context, conversationID, text string) (*reasoning.PlannerSendResponse, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	resp := f.sendResponses[0]
	if len(f.sendResponses) > 1 {
		f.sendResponses = f.sendResponses[1:]
	}
	return resp, nil
}

func (f *fakeTransport) Respond(ctx context.Context, conversationID, answer string) (*reasoning.PlannerSendResponse, error) {
	f.respondCalls++
	f.lastAnswer = answer
	return f.respondResp, f.respondErr
}

func TestQuestionPausesThenResumes(t *testing.T) {
	transport := &fakeTransport{
		sendResponses: []*reasoning.PlannerSendResponse{
			{Question: "Which quarter should the plan cover?"},
		},
		respondResp: &reasoning.PlannerSendResponse{
			Plan:   []string{"Pull Q3 pipeline", "Identify stalled deals"},
			Report: "Q3 plan ready.",
			Done:   true,
		},
	}
	p := New(transport, logging.Nop())

	if _, err := p.SendMessage(context.Background(), "c-1", "plan my quarter"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if p.CurrentQuestion() != "Which quarter should the plan cover?" {
		t.Fatalf("expected pending question, got %q", p.CurrentQuestion())
	}

	if _, err := p.RespondToQuestion(context.Background(), "Q3"); err != nil {
		t.Fatalf("RespondToQuestion: %v", err)
	}
	if transport.lastAnswer != "Q3" {
		t.Fatalf("answer not forwarded: %q", transport.lastAnswer)
	}
	if p.CurrentQuestion() != "" {
		t.Fatalf("question should clear after answer")
	}
	if p.Report() != "Q3 plan ready." || len(p.CurrentPlan()) != 2 {
		t.Fatalf("plan state not applied: report=%q plan=%v", p.Report(), p.CurrentPlan())
	}
}

func TestRespondWithoutQuestion(t *testing.T) {
	p := New(&fakeTransport{}, logging.Nop())
	if _, err := p.RespondToQuestion(context.Background(), "answer"); err != ErrNoPendingQuestion {
		t.Fatalf("expected ErrNoPendingQuestion, got %v", err)
	}
}

func TestSendErrorClearsProcessing(t *testing.T) {
	transport := &fakeTransport{sendErr: errors.New("boom")}
	p := New(transport, logging.Nop())

	if _, err := p.SendMessage(context.Background(), "c-1", "plan"); err == nil {
		t.Fatalf("expected error")
	}
	if p.IsProcessing() {
		t.Fatalf("processing flag stuck after failure")
	}
}

func TestResetDropsState(t *testing.T) {
	transport := &fakeTransport{
		sendResponses: []*reasoning.PlannerSendResponse{{Question: "q?", Plan: []string{"a"}}},
	}
	p := New(transport, logging.Nop())
	_, _ = p.SendMessage(context.Background(), "c-1", "plan")

	p.Reset()
	if p.CurrentQuestion() != "" || len(p.CurrentPlan()) != 0 || p.Report() != "" {
		t.Fatalf("Reset left state behind")
	}
}
