// Package repo implements the GORM-backed storage collaborators. This file
// provides ContextRepo, the SQL implementation of the conversation context
// key-value store: one row per user holding the JSON-encoded context.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// ContextRepo stores serialized ConversationContexts in conversation_contexts.
type ContextRepo struct {
	DB *gorm.DB
}

// NewContextRepo returns a ContextRepo bound to db.
func NewContextRepo(db *gorm.DB) *ContextRepo { return &ContextRepo{DB: db} }

// Load returns the stored context for userID, or (nil, nil) when absent.
func (r *ContextRepo) Load(ctx context.Context, userID string) (*domain.ConversationContext, error) {
	var row domain.StoredContext
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}
	var c domain.ConversationContext
	if err := json.Unmarshal([]byte(row.Payload), &c); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return &c, nil
}

// Save upserts the context for userID.
func (r *ContextRepo) Save(ctx context.Context, userID string, c domain.ConversationContext) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	row := domain.StoredContext{UserID: userID, Payload: string(payload), UpdatedAt: time.Now().UTC()}
	err = r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	return nil
}

// Delete removes the stored context for userID. Deleting a missing row is
// not an error.
func (r *ContextRepo) Delete(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.StoredContext{}).Error
}
