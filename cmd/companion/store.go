package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-chat-companion/internal/config"
	"github.com/tbourn/go-chat-companion/internal/kv"
	"github.com/tbourn/go-chat-companion/internal/repo"
	"github.com/tbourn/go-chat-companion/internal/services"
)

// buildContextStore picks the context repository named by CONTEXT_STORE.
// The returned close func releases any client it opened.
func buildContextStore(cfg config.StorageConfig, db *gorm.DB) (services.ContextRepository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.ContextStore {
	case config.StoreSQLite, "":
		if db == nil {
			return nil, nil, fmt.Errorf("sqlite context store needs a database")
		}
		return repo.NewContextRepo(db), noop, nil
	case config.StoreMemory:
		return kv.NewMemoryRepository(cfg.ContextTTL), noop, nil
	case config.StoreRedis:
		client := kv.NewRedisClient(cfg.RedisURL)
		return kv.NewRedisRepository(client, cfg.RedisKeyPrefix, cfg.ContextTTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown context store %q", cfg.ContextStore)
	}
}
