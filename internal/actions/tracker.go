package actions

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"copilot/internal/logging"
	"copilot/internal/reasoning"
	"copilot/internal/store"
	"copilot/internal/types"
)

const DefaultExpiry = 24 * time.Hour

// Tracker owns the lifecycle of agent-proposed actions awaiting approval. It
// is the only writer to the underlying store; the transcript never holds this
// state, so items survive conversation and mode switches.
type Tracker struct {
	store  store.ActionItemStore
	logger logging.Logger
	expiry time.Duration
	now    func() time.Time
}

type Option func(*Tracker)

func WithExpiry(expiry time.Duration) Option {
	return func(t *Tracker) {
		if expiry > 0 {
			t.expiry = expiry
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func NewTracker(items store.ActionItemStore, logger logging.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = logging.Nop()
	}
	t := &Tracker{
		store:  items,
		logger: logger,
		expiry: DefaultExpiry,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add records a proposed action. A repeat call with the same dedup key (the
// execution identity, or sequence key + message identity) is a no-op and
// returns the existing item.
func (t *Tracker) Add(ctx context.Context, proposal types.ProposedAction, messageID string) (*types.ActionItem, error) {
	item := &types.ActionItem{
		ID:          uuid.NewString(),
		SequenceKey: strings.TrimSpace(proposal.SequenceKey),
		ExecutionID: strings.TrimSpace(proposal.ExecutionID),
		MessageID:   strings.TrimSpace(messageID),
		Type:        proposal.Type,
		Title:       proposal.Title,
		Description: proposal.Description,
		ContactID:   proposal.ContactID,
		DealID:      proposal.DealID,
		MeetingID:   proposal.MeetingID,
		Status:      types.ActionItemStatusPending,
		CreatedAt:   t.now(),
	}
	item.ExpiresAt = item.CreatedAt.Add(t.expiry)

	if existing, ok, err := t.store.GetByDedupKey(ctx, item.DedupKey()); err != nil {
		return nil, err
	} else if ok {
		return existing, nil
	}

	saved, err := t.store.Upsert(ctx, item)
	if err != nil {
		return nil, err
	}
	t.logger.Info("action_item_added",
		logging.F("id", saved.ID),
		logging.F("type", string(saved.Type)),
		logging.F("sequence_key", saved.SequenceKey))
	return saved, nil
}

// Confirm marks an item confirmed. Confirming an already-confirmed item is a
// no-op, not an error.
func (t *Tracker) Confirm(ctx context.Context, id string) (*types.ActionItem, error) {
	item, ok, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrActionItemNotFound
	}
	if item.Status == types.ActionItemStatusConfirmed {
		return item, nil
	}
	item.Status = types.ActionItemStatusConfirmed
	return t.store.Upsert(ctx, item)
}

// BySequence returns all items sharing an originating sequence key.
func (t *Tracker) BySequence(ctx context.Context, sequenceKey string) ([]*types.ActionItem, error) {
	sequenceKey = strings.TrimSpace(sequenceKey)
	items, err := t.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*types.ActionItem, 0)
	for _, item := range items {
		if item.SequenceKey == sequenceKey {
			out = append(out, item)
		}
	}
	return out, nil
}

// Pending returns pending items, oldest first.
func (t *Tracker) Pending(ctx context.Context) ([]*types.ActionItem, error) {
	return t.store.ListByStatus(ctx, types.ActionItemStatusPending)
}

// All returns every tracked item, pending first, then by creation time.
func (t *Tracker) All(ctx context.Context) ([]*types.ActionItem, error) {
	items, err := t.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		iPending := items[i].Status == types.ActionItemStatusPending
		jPending := items[j].Status == types.ActionItemStatusPending
		if iPending != jPending {
			return iPending
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// Reconcile applies the approve-by-doing rule: a committed (non-simulated)
// response carrying a sequence key confirms every pending item with that key,
// no UI click required.
func (t *Tracker) Reconcile(ctx context.Context, resp *reasoning.SendResponse) error {
	if resp == nil || resp.IsSimulation {
		return nil
	}
	sequenceKey := strings.TrimSpace(resp.SequenceKey)
	if sequenceKey == "" {
		return nil
	}
	items, err := t.BySequence(ctx, sequenceKey)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Status != types.ActionItemStatusPending {
			continue
		}
		item.Status = types.ActionItemStatusConfirmed
		if _, err := t.store.Upsert(ctx, item); err != nil {
			return err
		}
		t.logger.Info("action_item_auto_confirmed",
			logging.F("id", item.ID),
			logging.F("sequence_key", sequenceKey))
	}
	return nil
}

// SweepExpired expires pending items past their horizon. Run once at session
// start; safe to re-run periodically.
func (t *Tracker) SweepExpired(ctx context.Context) (int, error) {
	items, err := t.store.ListByStatus(ctx, types.ActionItemStatusPending)
	if err != nil {
		return 0, err
	}
	now := t.now()
	swept := 0
	for _, item := range items {
		if item.ExpiresAt.IsZero() || item.ExpiresAt.After(now) {
			continue
		}
		item.Status = types.ActionItemStatusExpired
		if _, err := t.store.Upsert(ctx, item); err != nil {
			return swept, err
		}
		swept++
	}
	if swept > 0 {
		t.logger.Info("action_items_expired", logging.F("count", swept))
	}
	return swept, nil
}
