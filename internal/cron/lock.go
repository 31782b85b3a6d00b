package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/pkg/redis"
)

const defaultLockTTL = 5 * time.Minute

// Lock coordinates exclusive cron cycles across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	AcquireLock(ctx context.Context, name, token string, ttl time.Duration) error
	ReleaseLock(ctx context.Context, name, token string) error
}

// RedisLock is a named redis lock owned by a random token per acquisition.
type RedisLock struct {
	store lockStore
	name  string
	ttl   time.Duration
	token string
}

func NewRedisLock(store lockStore, name string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, name: name, ttl: ttl}, nil
}

// Acquire reports false without error when another worker holds the lock.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	err := l.store.AcquireLock(ctx, l.name, token, l.ttl)
	if errors.Is(err, redis.ErrLockHeld) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire cron lock: %w", err)
	}
	l.token = token
	return true, nil
}

// Release is a no-op unless this instance owns the lock.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	if err := l.store.ReleaseLock(ctx, l.name, l.token); err != nil {
		return fmt.Errorf("release cron lock: %w", err)
	}
	l.token = ""
	return nil
}
