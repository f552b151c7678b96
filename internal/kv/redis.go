package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// DefaultKeyPrefix namespaces context keys.
const DefaultKeyPrefix = "companion:context:"

// redisClient is the subset of *redis.Client the repository uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRepository stores JSON-encoded contexts under prefix+userID.
type RedisRepository struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

// NewRedisRepository wraps client. ttl 0 stores keys without expiry.
func NewRedisRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRepository {
	return newRedisRepository(client, prefix, ttl)
}

func newRedisRepository(client redisClient, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisClient parses url as a redis:// URL, falling back to treating it
// as a plain host:port address.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse Redis URL, using it as address")
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func (r *RedisRepository) key(userID string) string { return r.prefix + userID }

// Load returns the stored context, or (nil, nil) when the key is absent.
func (r *RedisRepository) Load(ctx context.Context, userID string) (*domain.ConversationContext, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var c domain.ConversationContext
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return &c, nil
}

// Save writes c, refreshing the key's TTL.
func (r *RedisRepository) Save(ctx context.Context, userID string, c domain.ConversationContext) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the stored context.
func (r *RedisRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
