package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps revoked session token ids in Redis until the tokens
// would have expired anyway.
type RedisRepository struct {
	client *redis.Client
}

var _ TokenRevoker = (*RedisRepository)(nil)

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// getRevokedKey generates the Redis key for a revoked token marker
func getRevokedKey(tokenID string) string {
	return fmt.Sprintf("session_token:revoked:%s", tokenID)
}

// RevokeToken marks a token id as revoked. Already expired tokens are ignored.
func (r *RedisRepository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, getRevokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, getRevokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
