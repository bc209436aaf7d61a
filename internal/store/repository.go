package store

import (
	"context"
	"errors"

	"copilot/internal/types"
)

var (
	ErrActionItemNotFound = errors.New("action item not found")
)

// ActionItemStore persists agent-proposed actions across conversations. Only
// the lifecycle tracker writes to it; everything else reads.
type ActionItemStore interface {
	List(ctx context.Context) ([]*types.ActionItem, error)
	ListByStatus(ctx context.Context, status types.ActionItemStatus) ([]*types.ActionItem, error)
	Get(ctx context.Context, id string) (*types.ActionItem, bool, error)
	GetByDedupKey(ctx context.Context, key string) (*types.ActionItem, bool, error)
	Upsert(ctx context.Context, item *types.ActionItem) (*types.ActionItem, error)
	Delete(ctx context.Context, id string) error
}

// SessionStateStore holds session-wide state that survives conversation
// switches: the currently resolved entity and the last active mode.
type SessionStateStore interface {
	ResolvedEntity(ctx context.Context) (*types.ResolvedEntity, bool, error)
	SetResolvedEntity(ctx context.Context, entity *types.ResolvedEntity) error
	LastMode(ctx context.Context) (types.Mode, bool, error)
	SetLastMode(ctx context.Context, mode types.Mode) error
}

type Repository interface {
	ActionItems() ActionItemStore
	SessionState() SessionStateStore
	Close() error
}
