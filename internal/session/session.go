// Package session holds the server side of the opaque session tokens. The
// store lives outside the process (Redis) so every replica resolves the same
// token to the same identity.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

type Store interface {
	// Create issues a fresh opaque token bound to userID.
	Create(ctx context.Context, userID string) (string, error)
	// UserID resolves a token, ErrNoSession when absent or expired.
	UserID(ctx context.Context, token string) (string, error)
	// Destroy invalidates a token. Destroying an absent token is a no-op.
	Destroy(ctx context.Context, token string) error
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	err := s.rdb.Set(ctx, sessionKey(token), userID, s.ttl).Err()

	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *RedisStore) UserID(ctx context.Context, token string) (string, error) {
	id, err := s.rdb.Get(ctx, sessionKey(token)).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}

		return "", err
	}

	return id, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}
