package userservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore records revoked tokens so authentication can reject them before
// their signature expires naturally.
type TokenStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisTokenStore keys revocations by the SHA-256 of the token so the raw
// token never reaches the store. Entries expire with the token itself.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func revocationKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return "revoked_token:" + hex.EncodeToString(hash[:])
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to blacklist.
		return nil
	}

	return s.client.Set(ctx, revocationKey(token), "1", ttl).Err()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, revocationKey(token)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
