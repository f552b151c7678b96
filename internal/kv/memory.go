// Package kv holds the key-value ContextRepository backends: an in-process
// store on go-cache and a Redis store on go-redis. Both key contexts by
// user id.
package kv

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// MemoryRepository keeps contexts in process memory. Entries expire after
// ttl of inactivity; ttl <= 0 keeps them until Delete.
type MemoryRepository struct {
	cache *cache.Cache
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &MemoryRepository{cache: cache.New(ttl, cleanup)}
}

// Load returns a copy of the stored context, or (nil, nil).
func (r *MemoryRepository) Load(_ context.Context, userID string) (*domain.ConversationContext, error) {
	x, found := r.cache.Get(userID)
	if !found {
		return nil, nil
	}
	c := x.(domain.ConversationContext)
	out := c.Clone()
	return &out, nil
}

// Save stores a copy of c.
func (r *MemoryRepository) Save(_ context.Context, userID string, c domain.ConversationContext) error {
	r.cache.Set(userID, c.Clone(), cache.DefaultExpiration)
	return nil
}

// Delete drops the stored context.
func (r *MemoryRepository) Delete(_ context.Context, userID string) error {
	r.cache.Delete(userID)
	return nil
}

// Len reports the number of stored contexts.
func (r *MemoryRepository) Len() int { return r.cache.ItemCount() }
