package planner

import (
	"context"
	"errors"
	"strings"
	"sync"

	"copilot/internal/logging"
	"copilot/internal/reasoning"
)

var ErrNoPendingQuestion = errors.New("planner has no pending question")

// Transport is the planning-agent backend contract.
type Transport interface {
	Send(ctx context.Context, conversationID, text string) (*reasoning.PlannerSendResponse, error)
	Respond(ctx context.Context, conversationID, answer string) (*reasoning.PlannerSendResponse, error)
}

type clientTransport struct {
	client *reasoning.Client
}

func (t clientTransport) Send(ctx context.Context, conversationID, text string) (*reasoning.PlannerSendResponse, error) {
	return t.client.PlannerSend(ctx, conversationID, text)
}

func (t clientTransport) Respond(ctx context.Context, conversationID, answer string) (*reasoning.PlannerSendResponse, error) {
	return t.client.PlannerRespond(ctx, conversationID, answer)
}

func NewClientTransport(client *reasoning.Client) Transport {
	return clientTransport{client: client}
}

// Planner drives a stateful plan: the backend may pause with a clarifying
// question before producing the final report, and the pause survives until
// RespondToQuestion continues it.
type Planner struct {
	mu        sync.Mutex
	transport Transport
	logger    logging.Logger

	conversationID  string
	currentQuestion string
	currentPlan     []string
	report          string
	processing      bool
}

func New(transport Transport, logger logging.Logger) *Planner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Planner{transport: transport, logger: logger}
}

// SendMessage starts (or extends) a plan. A no-op while a previous call is
// still processing.
func (p *Planner) SendMessage(ctx context.Context, conversationID, text string) (*reasoning.PlannerSendResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text is required")
	}
	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return nil, nil
	}
	p.processing = true
	p.conversationID = strings.TrimSpace(conversationID)
	transport := p.transport
	p.mu.Unlock()

	resp, err := transport.Send(ctx, conversationID, text)
	p.apply(resp, err)
	return resp, err
}

// RespondToQuestion answers the pending clarifying question and lets the plan
// continue.
func (p *Planner) RespondToQuestion(ctx context.Context, answer string) (*reasoning.PlannerSendResponse, error) {
	p.mu.Lock()
	if strings.TrimSpace(p.currentQuestion) == "" {
		p.mu.Unlock()
		return nil, ErrNoPendingQuestion
	}
	if p.processing {
		p.mu.Unlock()
		return nil, nil
	}
	p.processing = true
	conversationID := p.conversationID
	transport := p.transport
	p.mu.Unlock()

	resp, err := transport.Respond(ctx, conversationID, answer)
	p.apply(resp, err)
	return resp, err
}

func (p *Planner) apply(resp *reasoning.PlannerSendResponse, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processing = false
	if err != nil {
		p.logger.Warn("planner_call_failed", logging.F("error", err))
		return
	}
	if resp == nil {
		return
	}
	p.currentQuestion = strings.TrimSpace(resp.Question)
	if len(resp.Plan) > 0 {
		p.currentPlan = append([]string{}, resp.Plan...)
	}
	if strings.TrimSpace(resp.Report) != "" {
		p.report = resp.Report
	}
}

func (p *Planner) CurrentQuestion() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentQuestion
}

func (p *Planner) CurrentPlan() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.currentPlan...)
}

func (p *Planner) Report() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

func (p *Planner) IsProcessing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processing
}

// Reset drops all plan state, including a pending question.
func (p *Planner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conversationID = ""
	p.currentQuestion = ""
	p.currentPlan = nil
	p.report = ""
	p.processing = false
}
