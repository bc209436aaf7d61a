package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"copilot/internal/actions"
	"copilot/internal/autonomous"
	"copilot/internal/logging"
	"copilot/internal/planner"
	"copilot/internal/reasoning"
	"copilot/internal/store"
	"copilot/internal/timeline"
	"copilot/internal/types"
)

const (
	// DefaultTimeout bounds a classic-mode attempt; expiry classifies as a
	// timeout, distinct from a network failure.
	DefaultTimeout = 30 * time.Second

	draftPrefix = "draft-"
)

// Transport is the slice of the reasoning service the controller needs
// directly. *reasoning.Client satisfies it.
type Transport interface {
	Send(ctx context.Context, req reasoning.SendRequest, timeout time.Duration) (*reasoning.SendResponse, error)
	History(ctx context.Context, conversationID string, limit int) (*reasoning.HistoryResponse, error)
}

type Deps struct {
	Transport Transport
	Tracker   *actions.Tracker
	State     store.SessionStateStore
	Planner   *planner.Planner
	Opener    autonomous.StreamOpener
	Logger    logging.Logger

	Timeout         time.Duration
	SimulatorBudget time.Duration
	HistoryPageSize int
}

// requestToken identifies one outstanding attempt. Every scheduled or
// network-completion callback checks it before touching shared state, so a
// cancelled request cannot resurrect stale progress.
type requestToken struct {
	cancel        context.CancelFunc
	cancelled     atomic.Bool
	placeholderID string
}

// Controller owns the active conversation: its transcript, the active
// execution mode, cancellation, and the composition of simulator, mapper,
// resolver, classifier, and tracker. All mutation happens inside its mutex;
// it is the transcript's single writer.
type Controller struct {
	mu sync.Mutex

	transport Transport
	tracker   *actions.Tracker
	state     store.SessionStateStore
	planner   *planner.Planner
	loop      *autonomous.Loop
	logger    logging.Logger

	timeout   time.Duration
	simBudget time.Duration
	pageSize  int

	mode           types.Mode
	conversationID string
	transcript     []types.ConversationMessage
	isLoading      bool
	current        *requestToken
	simulator      *timeline.Simulator

	onChange func()
}

func New(deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Controller{
		transport:      deps.Transport,
		tracker:        deps.Tracker,
		state:          deps.State,
		planner:        deps.Planner,
		logger:         logger,
		timeout:        deps.Timeout,
		simBudget:      deps.SimulatorBudget,
		pageSize:       deps.HistoryPageSize,
		mode:           types.ModeClassic,
		conversationID: newDraftID(),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.simBudget <= 0 {
		c.simBudget = timeline.DefaultSimulatorBudget
	}
	if c.pageSize <= 0 {
		c.pageSize = 100
	}
	if deps.Opener != nil {
		c.loop = autonomous.NewLoop(deps.Opener, logger, autonomous.Callbacks{
			OnUpdate:   c.refreshAutonomous,
			OnResponse: c.completeAutonomous,
			OnError:    c.failAutonomous,
		})
	}
	return c
}

// OnChange registers the re-render hook. The callback runs outside the
// controller lock.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Messages returns a snapshot of the transcript.
func (c *Controller) Messages() []types.ConversationMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.ConversationMessage{}, c.transcript...)
}

func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoading
}

func (c *Controller) Mode() types.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Loop exposes the autonomous sub-service for status display.
func (c *Controller) Loop() *autonomous.Loop {
	return c.loop
}

// Planner exposes the planning sub-service for status display.
func (c *Controller) Planner() *planner.Planner {
	return c.planner
}

func newDraftID() string {
	return draftPrefix + uuid.NewString()
}

// isDraftID reports whether the conversation only exists client-side. Draft
// ids are never sent to history-loading calls.
func isDraftID(id string) bool {
	return strings.HasPrefix(id, draftPrefix)
}

func (c *Controller) findMessage(id string) int {
	for i := range c.transcript {
		if c.transcript[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) removeMessage(id string) {
	if i := c.findMessage(id); i >= 0 {
		c.transcript = append(c.transcript[:i], c.transcript[i+1:]...)
	}
}

func newMessage(role types.Role, content string) types.ConversationMessage {
	return types.ConversationMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
