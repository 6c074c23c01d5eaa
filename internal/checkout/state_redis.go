package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/redis"
)

// RedisStateStore keeps wizard state in Redis so an interrupted shopper can
// resume mid-checkout.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore builds the Redis-backed wizard state store.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) (*RedisStateStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStateStore{client: client, ttl: ttl}, nil
}

func (s *RedisStateStore) Load(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.client.Get(ctx, s.client.WizardKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wizard state")
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode wizard state")
	}
	return &state, nil
}

func (s *RedisStateStore) Save(ctx context.Context, sessionID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode wizard state")
	}
	if err := s.client.Set(ctx, s.client.WizardKey(sessionID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist wizard state")
	}
	return nil
}

func (s *RedisStateStore) Drop(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.WizardKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop wizard state")
	}
	return nil
}
