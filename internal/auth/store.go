package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrChallengeNotFound is returned when no unexpired challenge exists for a wallet.
var ErrChallengeNotFound = errors.New("login challenge not found or expired")

// Store keeps single-use login challenges and revoked token IDs.
type Store interface {
	SaveChallenge(ctx context.Context, wallet, message string, ttl time.Duration) error
	// ConsumeChallenge returns the pending challenge and removes it.
	ConsumeChallenge(ctx context.Context, wallet string) (string, error)
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const (
	challengeKeyPrefix = "fracta:login-challenge:"
	revokedKeyPrefix   = "fracta:revoked-token:"
)

// RedisStore keeps challenges in redis so any API instance can complete a login.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses url, connects and pings. It returns nil when url is empty.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (s *RedisStore) SaveChallenge(ctx context.Context, wallet, message string, ttl time.Duration) error {
	if err := s.client.Set(ctx, challengeKeyPrefix+wallet, message, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save login challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) ConsumeChallenge(ctx context.Context, wallet string) (string, error) {
	message, err := s.client.GetDel(ctx, challengeKeyPrefix+wallet).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrChallengeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume login challenge: %w", err)
	}
	return message, nil
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

type expiring struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a single-process Store.
type MemoryStore struct {
	now func() time.Time

	mu         sync.Mutex
	challenges map[string]expiring
	revoked    map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		challenges: make(map[string]expiring),
		revoked:    make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveChallenge(_ context.Context, wallet, message string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[wallet] = expiring{value: message, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) ConsumeChallenge(_ context.Context, wallet string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[wallet]
	delete(s.challenges, wallet)
	if !ok || !s.now().Before(c.expiresAt) {
		return "", ErrChallengeNotFound
	}
	return c.value, nil
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && s.now().Before(exp), nil
}
