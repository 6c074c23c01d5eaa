package payment

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/redis"
)

// BusyLock is the per-session double-submit guard: while a checkout run is
// in flight the submit action must be rejected, so one cart can never
// produce two gateway orders. Claim atomically consumes the in-flight run,
// so of any number of concurrent confirmation callbacks exactly one wins.
type BusyLock interface {
	Acquire(ctx context.Context, sessionID string) (bool, error)
	Claim(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// RedisBusyLock implements BusyLock with a SetNX key. The TTL bounds how
// long an abandoned widget can keep a session locked.
type RedisBusyLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBusyLock builds the Redis-backed busy lock.
func NewRedisBusyLock(client *redis.Client, ttl time.Duration) (*RedisBusyLock, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisBusyLock{client: client, ttl: ttl}, nil
}

func (l *RedisBusyLock) Acquire(ctx context.Context, sessionID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.client.CheckoutLockKey(sessionID), "1", l.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	return ok, nil
}

func (l *RedisBusyLock) Claim(ctx context.Context, sessionID string) (bool, error) {
	_, err := l.client.GetDel(ctx, l.client.CheckoutLockKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim checkout lock")
	}
	return true, nil
}

func (l *RedisBusyLock) Release(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, l.client.CheckoutLockKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release checkout lock")
	}
	return nil
}
