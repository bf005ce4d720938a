package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultLockTTL bounds how long a crashed run can hold a job lock.
const defaultLockTTL = 10 * time.Minute

// Lock is a Redis-backed mutual exclusion guard for sweep jobs, so that
// overlapping schedulers (cron plus a manual admin trigger) cannot run the
// same job concurrently.
type Lock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{client: client, ttl: defaultLockTTL}
}

// NewLockWithTTL overrides the default lock expiry.
func NewLockWithTTL(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{client: client, ttl: ttl}
}

func lockKey(job string) string {
	return "sweep:lock:" + job
}

// Acquire takes the lock for job. It returns false when another run holds
// it. The lock expires on its own after the TTL.
func (l *Lock) Acquire(ctx context.Context, job string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(job), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sweep lock %s: %w", job, err)
	}
	return ok, nil
}

// Release drops the lock for job.
func (l *Lock) Release(ctx context.Context, job string) error {
	if err := l.client.Del(ctx, lockKey(job)).Err(); err != nil {
		return fmt.Errorf("release sweep lock %s: %w", job, err)
	}
	return nil
}
