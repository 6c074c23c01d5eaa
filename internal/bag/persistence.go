package bag

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/redis"
)

// RedisSlot stores the serialized bag under one durable key per session.
// The whole item list is rewritten on every mutation and read back on first
// access, so a returning shopper sees their prior bag.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot builds the Redis-backed persistence slot.
func NewRedisSlot(client *redis.Client, ttl time.Duration) (*RedisSlot, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisSlot{client: client, ttl: ttl}, nil
}

// Load returns the persisted bag for the session, or an empty bag when the
// slot has never been written.
func (s *RedisSlot) Load(ctx context.Context, sessionID string) ([]Item, error) {
	raw, err := s.client.Get(ctx, s.client.BagKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bag")
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode bag snapshot")
	}
	return items, nil
}

// Save rewrites the full snapshot for the session.
func (s *RedisSlot) Save(ctx context.Context, sessionID string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode bag snapshot")
	}
	if err := s.client.Set(ctx, s.client.BagKey(sessionID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist bag")
	}
	return nil
}

// Drop deletes the session's slot.
func (s *RedisSlot) Drop(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.BagKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear bag")
	}
	return nil
}
