package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedPrefix = "revoked:"

// RevocationStore keeps the refresh-token blacklist in Redis. Keys expire on
// their own when the token would have expired anyway.
type RevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRevocationStore connects using a redis:// URL and pings the server.
func NewRevocationStore(ctx context.Context, url string) (*RevocationStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RevocationStore{client: client, now: time.Now}, nil
}

func (s *RevocationStore) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	ttl := ttlUntil(s.now(), expiresAt)
	if ttl == 0 {
		return nil
	}
	return s.client.Set(ctx, revokedPrefix+jti, userID, ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RevocationStore) Close() error {
	return s.client.Close()
}

// ttlUntil is the remaining lifetime of a token, or zero when it has already
// expired and needs no blacklist entry.
func ttlUntil(now, expiresAt time.Time) time.Duration {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	// Round up so the key never outlives the token by less than a second.
	return d.Truncate(time.Second) + time.Second
}
