package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	loginAttemptsPrefix = "login_attempts:"
	loginLockPrefix     = "login_lock:"
)

// FailureRetention drops a failure streak that saw no activity for this long.
// Only Reset and Lock clear a streak before then.
const FailureRetention = 7 * 24 * time.Hour

// RedisLoginAttemptStore counts consecutive failed logins per account in Redis
type RedisLoginAttemptStore struct {
	client *redis.Client
}

func NewRedisLoginAttemptStore(client *redis.Client) *RedisLoginAttemptStore {
	return &RedisLoginAttemptStore{client: client}
}

// RecordFailure increments the failure streak and returns its length
func (s *RedisLoginAttemptStore) RecordFailure(ctx context.Context, account string) (int64, error) {
	key := loginAttemptsPrefix + normaliseAccount(account)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, FailureRetention)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment login attempts: %w", err)
	}
	return incr.Val(), nil
}

// Lock blocks the account until the deadline and starts a fresh streak for afterwards
func (s *RedisLoginAttemptStore) Lock(ctx context.Context, account string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	account = normaliseAccount(account)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, loginLockPrefix+account, strconv.FormatInt(until.Unix(), 10), ttl)
		pipe.Del(ctx, loginAttemptsPrefix+account)
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	return nil
}

func (s *RedisLoginAttemptStore) LockedUntil(ctx context.Context, account string) (time.Time, error) {
	val, err := s.client.Get(ctx, loginLockPrefix+normaliseAccount(account)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read account lock: %w", err)
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse account lock: %w", err)
	}
	return time.Unix(unix, 0), nil
}

func (s *RedisLoginAttemptStore) Reset(ctx context.Context, account string) error {
	account = normaliseAccount(account)
	if err := s.client.Del(ctx, loginAttemptsPrefix+account, loginLockPrefix+account).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func normaliseAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}

type failureStreak struct {
	count int64
	last  time.Time
}

// MemoryLoginAttemptStore is the in-process fallback when Redis is unavailable
type MemoryLoginAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]failureStreak
	locks    map[string]time.Time
	now      func() time.Time
}

func NewMemoryLoginAttemptStore() *MemoryLoginAttemptStore {
	return NewMemoryLoginAttemptStoreWithClock(time.Now)
}

func NewMemoryLoginAttemptStoreWithClock(now func() time.Time) *MemoryLoginAttemptStore {
	return &MemoryLoginAttemptStore{
		attempts: make(map[string]failureStreak),
		locks:    make(map[string]time.Time),
		now:      now,
	}
}

func (s *MemoryLoginAttemptStore) RecordFailure(ctx context.Context, account string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account = normaliseAccount(account)
	now := s.now()
	streak := s.attempts[account]
	if now.Sub(streak.last) >= FailureRetention {
		streak = failureStreak{}
	}
	streak.count++
	streak.last = now
	s.attempts[account] = streak
	return streak.count, nil
}

func (s *MemoryLoginAttemptStore) Lock(ctx context.Context, account string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account = normaliseAccount(account)
	s.locks[account] = until
	delete(s.attempts, account)
	return nil
}

func (s *MemoryLoginAttemptStore) LockedUntil(ctx context.Context, account string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account = normaliseAccount(account)
	until, ok := s.locks[account]
	if !ok {
		return time.Time{}, nil
	}
	if !s.now().Before(until) {
		delete(s.locks, account)
		return time.Time{}, nil
	}
	return until, nil
}

func (s *MemoryLoginAttemptStore) Reset(ctx context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account = normaliseAccount(account)
	delete(s.attempts, account)
	delete(s.locks, account)
	return nil
}
