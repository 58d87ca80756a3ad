package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "revoked_token:"

// RedisTokenRevocationStore remembers revoked refresh token ids until they would have expired anyway
type RedisTokenRevocationStore struct {
	client *redis.Client
}

func NewRedisTokenRevocationStore(client *redis.Client) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{client: client}
}

func (s *RedisTokenRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Claim revokes jti and reports whether this call did it. Only one of several
// concurrent claims on the same jti wins.
func (s *RedisTokenRevocationStore) Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	won, err := s.client.SetNX(ctx, revokedTokenPrefix+jti, "1", claimTTL(ttl)).Result()
	if err != nil {
		return false, fmt.Errorf("claim token: %w", err)
	}
	return won, nil
}

func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenRevocationStore is the in-process fallback when Redis is unavailable
type MemoryTokenRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryTokenRevocationStore() *MemoryTokenRevocationStore {
	return &MemoryTokenRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryTokenRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = now.Add(ttl)
	return nil
}

func (s *MemoryTokenRevocationStore) Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.revoked[jti]; ok && now.Before(expiry) {
		return false, nil
	}
	s.revoked[jti] = now.Add(claimTTL(ttl))
	return true, nil
}

func (s *MemoryTokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.revoked[jti]
	return ok && s.now().Before(expiry), nil
}

// claimTTL keeps a claim alive at least briefly; a zero TTL would never expire in Redis
func claimTTL(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
