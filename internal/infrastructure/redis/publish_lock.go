package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rateboard-service/internal/application"
)

const lockKeyPrefix = "publish_lock:"

// PublishLock serializes publish runs per group with a SetNX key. The TTL
// bounds how long a crashed publisher can hold the lock.
type PublishLock struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.PublishLock = (*PublishLock)(nil)

func NewPublishLock(client *redis.Client, ttl time.Duration) *PublishLock {
	return &PublishLock{Client: client, TTL: ttl}
}

func (l *PublishLock) TryAcquire(ctx context.Context, groupID string) (bool, error) {
	ok, err := l.Client.SetNX(ctx, lockKeyPrefix+groupID, "1", l.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("publish lock acquire: %w", err)
	}
	return ok, nil
}

func (l *PublishLock) Release(ctx context.Context, groupID string) error {
	if err := l.Client.Del(ctx, lockKeyPrefix+groupID).Err(); err != nil {
		return fmt.Errorf("publish lock release: %w", err)
	}
	return nil
}
