package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastCheckPrefix = "problem_status_check:"

// CheckStore keeps the per-identity last-status-check timestamp that drives
// the personal-list notifications.
type CheckStore interface {
	// LastCheck returns the stored timestamp and whether one exists.
	LastCheck(ctx context.Context, identityKey string) (time.Time, bool, error)
	// SetLastCheck records the given time for the identity.
	SetLastCheck(ctx context.Context, identityKey string, t time.Time) error
}

// RedisCheckStore keeps one key per identity, like the submission rate
// limiter does.
type RedisCheckStore struct {
	client *redis.Client
}

func NewRedisCheckStore(client *redis.Client) *RedisCheckStore {
	return &RedisCheckStore{client: client}
}

func (s *RedisCheckStore) LastCheck(ctx context.Context, identityKey string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, lastCheckPrefix+identityKey).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		// Unparseable value counts as no record.
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (s *RedisCheckStore) SetLastCheck(ctx context.Context, identityKey string, t time.Time) error {
	return s.client.Set(ctx, lastCheckPrefix+identityKey, t.Format(time.RFC3339Nano), 0).Err()
}
