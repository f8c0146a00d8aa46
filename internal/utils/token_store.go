package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "jwt:revoked:"

// TokenStore tracks revoked JWTs in Redis until their natural expiration,
// which gives logout real semantics for stateless bearer tokens.
type TokenStore struct {
	redis *redis.Client
}

func NewTokenStore(redisClient *redis.Client) *TokenStore {
	return &TokenStore{redis: redisClient}
}

// Revoke stores the token with a TTL equal to its remaining lifetime.
// Already-expired tokens need no entry.
func (s *TokenStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err()
}

// IsRevoked reports whether the token was revoked before natural expiration.
// On a Redis error it fails open so a transient outage cannot lock every
// user out.
func (s *TokenStore) IsRevoked(ctx context.Context, token string) bool {
	n, err := s.redis.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		return false
	}
	return n > 0
}
