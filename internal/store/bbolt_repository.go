package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"copilot/internal/types"
)

var (
	bucketActionItems  = []byte("action_items")
	bucketActionDedup  = []byte("action_item_dedup")
	bucketSessionState = []byte("session_state")

	keyResolvedEntity = []byte("resolved_entity")
	keyLastMode       = []byte("last_mode")
)

type bboltRepository struct {
	db      *bolt.DB
	actions ActionItemStore
	state   SessionStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:      db,
		actions: &bboltActionItemStore{db: db},
		state:   &bboltSessionStateStore{db: db},
	}, nil
}

func (r *bboltRepository) ActionItems() ActionItemStore {
	return r.actions
}

func (r *bboltRepository) SessionState() SessionStateStore {
	return r.state
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketActionItems); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketActionDedup); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketSessionState); err != nil {
			return err
		}
		return nil
	})
}

type bboltActionItemStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltActionItemStore) List(ctx context.Context) ([]*types.ActionItem, error) {
	out := make([]*types.ActionItem, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActionItems)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var item types.ActionItem
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			out = append(out, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *bboltActionItemStore) ListByStatus(ctx context.Context, status types.ActionItemStatus) ([]*types.ActionItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, item := range items {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *bboltActionItemStore) Get(ctx context.Context, id string) (*types.ActionItem, bool, error) {
	var (
		out *types.ActionItem
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActionItems)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return nil
		}
		var item types.ActionItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		out = &item
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *bboltActionItemStore) GetByDedupKey(ctx context.Context, key string) (*types.ActionItem, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActionDedup)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(key))
		id = string(raw)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if id == "" {
		return nil, false, nil
	}
	return s.Get(ctx, id)
}

func (s *bboltActionItemStore) Upsert(ctx context.Context, item *types.ActionItem) (*types.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := normalizeActionItem(item)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		items := tx.Bucket(bucketActionItems)
		dedup := tx.Bucket(bucketActionDedup)
		if items == nil || dedup == nil {
			return errors.New("action item buckets missing")
		}
		if err := items.Put([]byte(normalized.ID), raw); err != nil {
			return err
		}
		return dedup.Put([]byte(normalized.DedupKey()), []byte(normalized.ID))
	}); err != nil {
		return nil, err
	}
	copy := *normalized
	return &copy, nil
}

func (s *bboltActionItemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		items := tx.Bucket(bucketActionItems)
		if items == nil {
			return errors.New("action item bucket missing")
		}
		key := []byte(id)
		raw := items.Get(key)
		if len(raw) == 0 {
			return ErrActionItemNotFound
		}
		var item types.ActionItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		if dedup := tx.Bucket(bucketActionDedup); dedup != nil {
			_ = dedup.Delete([]byte(item.DedupKey()))
		}
		return items.Delete(key)
	})
}

func normalizeActionItem(item *types.ActionItem) (*types.ActionItem, error) {
	if item == nil || strings.TrimSpace(item.ID) == "" {
		return nil, errors.New("action item requires an id")
	}
	normalized := *item
	if normalized.Status == "" {
		normalized.Status = types.ActionItemStatusPending
	}
	if normalized.Type == "" {
		normalized.Type = types.ActionItemTypeOther
	}
	if normalized.CreatedAt.IsZero() {
		normalized.CreatedAt = time.Now().UTC()
	}
	return &normalized, nil
}

type bboltSessionStateStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltSessionStateStore) ResolvedEntity(ctx context.Context) (*types.ResolvedEntity, bool, error) {
	var (
		out *types.ResolvedEntity
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessionState)
		if b == nil {
			return nil
		}
		raw := b.Get(keyResolvedEntity)
		if len(raw) == 0 {
			return nil
		}
		var entity types.ResolvedEntity
		if err := json.Unmarshal(raw, &entity); err != nil {
			return err
		}
		out = &entity
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *bboltSessionStateStore) SetResolvedEntity(ctx context.Context, entity *types.ResolvedEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entity == nil {
		return errors.New("resolved entity is required")
	}
	raw, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessionState)
		if b == nil {
			return errors.New("session state bucket missing")
		}
		return b.Put(keyResolvedEntity, raw)
	})
}

func (s *bboltSessionStateStore) LastMode(ctx context.Context) (types.Mode, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessionState)
		if b == nil {
			return nil
		}
		raw = append([]byte(nil), b.Get(keyLastMode)...)
		return nil
	})
	if err != nil {
		return "", false, err
	}
	mode, ok := types.NormalizeMode(string(raw))
	if !ok || len(raw) == 0 {
		return "", false, nil
	}
	return mode, true, nil
}

func (s *bboltSessionStateStore) SetLastMode(ctx context.Context, mode types.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessionState)
		if b == nil {
			return errors.New("session state bucket missing")
		}
		return b.Put(keyLastMode, []byte(mode))
	})
}
