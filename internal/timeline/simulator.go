package timeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"copilot/internal/types"
)

const DefaultSimulatorBudget = 10 * time.Second

// Simulator fabricates a progress timeline for a pending request. It splits a
// fixed budget across N steps in increasing 1:2:...:N proportion, so setup
// steps advance quickly and the "real work" steps linger. It never completes
// the final step; only real telemetry or an error supersedes it.
//
// Advancement runs on scheduled callbacks, not a goroutine loop; every
// callback re-checks the stopped flag under the mutex so a cancelled request
// cannot resurrect stale progress.
type Simulator struct {
	mu       sync.Mutex
	call     types.ToolCall
	active   int
	stopped  bool
	timers   []*time.Timer
	onUpdate func(types.ToolCall)
}

func NewSimulator(category types.RequestCategory, onUpdate func(types.ToolCall)) *Simulator {
	return &Simulator{
		call: types.ToolCall{
			ID:        uuid.NewString(),
			Category:  category,
			State:     types.ToolCallStateInitiating,
			StartedAt: time.Now().UTC(),
			Steps:     StepsFor(category),
		},
		active:   -1,
		onUpdate: onUpdate,
	}
}

// Start activates the first step and schedules the remaining advances across
// the budget. Calling Start more than once is a no-op.
func (s *Simulator) Start(budget time.Duration) {
	if budget <= 0 {
		budget = DefaultSimulatorBudget
	}
	s.mu.Lock()
	if s.stopped || s.active >= 0 {
		s.mu.Unlock()
		return
	}
	s.call.State = types.ToolCallStateProcessing
	s.active = 0
	s.call.Steps[0].State = types.StepStateActive
	snapshot := s.call.Clone()

	// Step i (1-based) takes budget*i/total; the timer for advancing past
	// step i fires at the cumulative boundary. The final step gets no timer.
	n := len(s.call.Steps)
	total := n * (n + 1) / 2
	elapsed := time.Duration(0)
	for i := 1; i < n; i++ {
		elapsed += budget * time.Duration(i) / time.Duration(total)
		target := i
		timer := time.AfterFunc(elapsed, func() {
			s.advanceTo(target)
		})
		s.timers = append(s.timers, timer)
	}
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Simulator) advanceTo(index int) {
	s.mu.Lock()
	if s.stopped || index >= len(s.call.Steps) || index <= s.active {
		s.mu.Unlock()
		return
	}
	for i := s.active; i < index; i++ {
		if i >= 0 {
			s.call.Steps[i].State = types.StepStateComplete
		}
	}
	s.active = index
	s.call.Steps[index].State = types.StepStateActive
	snapshot := s.call.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Stop cancels all scheduled advancement. Safe to call repeatedly.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, timer := range timers {
		timer.Stop()
	}
}

// Snapshot returns a copy of the current simulated ToolCall.
func (s *Simulator) Snapshot() types.ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.call.Clone()
}

func (s *Simulator) notify(snapshot types.ToolCall) {
	if s.onUpdate != nil {
		s.onUpdate(snapshot)
	}
}
