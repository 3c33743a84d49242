package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/practice-exam/internal/session"
)

// RedisStore keeps snapshots as JSON strings in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration // 0 keeps snapshots until cleared
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client, cfg.Prefix, cfg.TTL), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "practice-exam:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(quizID string) string { return s.prefix + session.StorageKey(quizID) }

func (s *RedisStore) Save(ctx context.Context, quizID string, snap session.Snapshot) error {
	buf, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(quizID), buf, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, quizID string) (session.Snapshot, bool, error) {
	buf, err := s.client.Get(ctx, s.key(quizID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Snapshot{}, false, nil
		}
		return session.Snapshot{}, false, err
	}
	var snap session.Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return session.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", quizID, err)
	}
	return snap, true, nil
}

func (s *RedisStore) Clear(ctx context.Context, quizID string) error {
	return s.client.Del(ctx, s.key(quizID)).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
