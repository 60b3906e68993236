package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/rcabrera/tillpoint-backend/pkg/redis"
)

// RedisStore persists session snapshots in Redis so an in-progress sale
// survives a process restart. Snapshots expire after the configured TTL;
// an expired session simply starts empty again.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, data []byte) error {
	return r.client.Set(ctx, r.client.LedgerSnapshotKey(sessionID), data, r.ttl)
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.client.LedgerSnapshotKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(val), true, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.client.LedgerSnapshotKey(sessionID))
}
