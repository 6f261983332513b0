// Package session issues and resolves bearer session tokens.
package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a token does not resolve to a session.
var ErrNotFound = errors.New("session not found")

// Manager creates, resolves, and destroys user sessions.
type Manager interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

const keyPrefix = "session:"

var _ Manager = (*RedisManager)(nil)

// RedisManager stores sessions in Redis with a sliding TTL.
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a RedisManager. Sessions expire after ttl of inactivity.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisManager {
	return &RedisManager{client: client, ttl: ttl}
}

// Create issues a fresh token for the user.
func (m *RedisManager) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	if err := m.client.Set(ctx, keyPrefix+token, userID, m.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "store session")
	}
	return token, nil
}

// Resolve maps a token back to its user ID and refreshes the TTL.
func (m *RedisManager) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := m.client.GetEx(ctx, keyPrefix+token, m.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "resolve session")
	}
	return userID, nil
}

// Destroy removes the session. Destroying an unknown token is a no-op.
func (m *RedisManager) Destroy(ctx context.Context, token string) error {
	if err := m.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "destroy session")
	}
	return nil
}
