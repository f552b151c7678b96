package services

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// ManagerRegistry keeps one ContextManager per user in memory and drops
// managers that have been idle for longer than the TTL. Dropping a manager
// loses nothing: its state was already written through to the repository
// and is reloaded on the next Get.
type ManagerRegistry struct {
	repo  ContextRepository
	opts  ManagerOptions
	cache *cache.Cache
	mu    sync.Mutex
}

// NewManagerRegistry builds a registry. idleTTL <= 0 keeps managers forever.
func NewManagerRegistry(repo ContextRepository, opts ManagerOptions, idleTTL time.Duration) *ManagerRegistry {
	cleanup := idleTTL / 2
	if idleTTL <= 0 {
		idleTTL = cache.NoExpiration
		cleanup = 0
	}
	c := cache.New(idleTTL, cleanup)
	c.OnEvicted(func(userID string, _ any) {
		log.Debug().Str("user_id", userID).Msg("context manager evicted")
	})
	return &ManagerRegistry{repo: repo, opts: opts, cache: c}
}

// Get returns the user's manager, loading it from the repository on first
// use. Each call refreshes the idle deadline.
func (r *ManagerRegistry) Get(ctx context.Context, userID string) *ContextManager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache.Get(userID); ok {
		m := v.(*ContextManager)
		r.cache.Set(userID, m, cache.DefaultExpiration)
		return m
	}
	m := NewContextManager(ctx, userID, r.repo, r.opts)
	r.cache.Set(userID, m, cache.DefaultExpiration)
	return m
}

// Len reports the number of live managers.
func (r *ManagerRegistry) Len() int { return r.cache.ItemCount() }

// Drain waits for background writes of every live manager.
func (r *ManagerRegistry) Drain() {
	for _, it := range r.cache.Items() {
		if m, ok := it.Object.(*ContextManager); ok {
			m.Wait()
		}
	}
}
