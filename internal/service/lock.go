package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRunInProgress is returned when another pipeline run holds the lock.
var ErrRunInProgress = errors.New("a load run is already in progress")

// RunLockKey is the Redis key guarding pipeline runs.
const RunLockKey = "etl:lock"

// Locker serializes pipeline runs. Acquire returns ErrRunInProgress when
// the lock is held; any other error means the lock backend is unusable.
type Locker interface {
	Acquire(ctx context.Context, runID string) (release func(context.Context) error, err error)
}

// RedisLocker is a SET NX lock with a TTL so a crashed run cannot wedge
// the pipeline forever.
type RedisLocker struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisLocker returns a locker on rdb. ttl <= 0 means 30 minutes.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisLocker{rdb: rdb, key: RunLockKey, ttl: ttl}
}

// only the owner may delete the lock
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, runID string) (func(context.Context) error, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, runID, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		holder, _ := l.rdb.Get(ctx, l.key).Result()
		return nil, fmt.Errorf("%w (run %s)", ErrRunInProgress, holder)
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.rdb, []string{l.key}, runID).Err()
	}, nil
}
