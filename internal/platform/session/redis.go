package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	codeKeyPrefix    = "recovery:"
)

// NewRedisClient connects to Redis from a URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps sessions in Redis so they survive process restarts.
// Redis owns the expiry via key TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, token string, id Identity, ttl time.Duration) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal session identity: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+token, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Identity, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("unmarshal session identity: %w", err)
	}
	return &id, nil
}

func (s *RedisStore) Refresh(ctx context.Context, token string, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal session identity: %w", err)
	}
	// XX keeps unknown tokens a no-op, KeepTTL preserves the expiry.
	err = s.client.SetArgs(ctx, sessionKeyPrefix+token, data, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RedisCodeStore keeps pending recovery codes in Redis. Keys are not
// given a TTL: the absolute expiry travels with the value so redemption
// can report "expired" rather than "never issued".
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Put(ctx context.Context, email string, rc RecoveryCode) error {
	data, err := json.Marshal(rc)
	if err != nil {
		return fmt.Errorf("marshal recovery code: %w", err)
	}
	if err := s.client.Set(ctx, codeKeyPrefix+email, data, 0).Err(); err != nil {
		return fmt.Errorf("save recovery code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, email string) (*RecoveryCode, error) {
	data, err := s.client.Get(ctx, codeKeyPrefix+email).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recovery code: %w", err)
	}

	var rc RecoveryCode
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("unmarshal recovery code: %w", err)
	}
	return &rc, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, codeKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("delete recovery code: %w", err)
	}
	return nil
}
