// Package repo implements the GORM-backed storage collaborators. This file
// provides SessionRepo, the chat-session store the context manager writes
// messages against.
//
// Functions:
//
//   - GetActiveSession(ctx, userID) -> *domain.ChatSession, error
//     Newest open session for the user, or (nil, nil).
//
//   - CreateSession(ctx, userID) -> *domain.ChatSession, error
//     Inserts a new open session with a UUID primary key.
//
//   - CloseSession(ctx, id) -> error
//     Marks a session closed; ErrNotFound when it does not exist.
//
//   - AppendMessage(ctx, sessionID, entry) -> error
//     Inserts one message; intent metadata is flattened into columns.
//
//   - ListSessionMessages(ctx, sessionID, limit) -> []domain.SessionMessage, error
//     Messages ordered (CreatedAt ASC, ID ASC).
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// SessionRepo is the SQL SessionStore.
type SessionRepo struct {
	DB *gorm.DB
}

// NewSessionRepo returns a SessionRepo bound to db.
func NewSessionRepo(db *gorm.DB) *SessionRepo { return &SessionRepo{DB: db} }

// GetActiveSession returns the newest open session for userID.
func (r *SessionRepo) GetActiveSession(ctx context.Context, userID string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.SessionOpen).
		Order("created_at DESC, id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a new open session owned by userID.
func (r *SessionRepo) CreateSession(ctx context.Context, userID string) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	s := &domain.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.SessionOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.DB.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// CloseSession marks the session closed.
func (r *SessionRepo) CloseSession(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&domain.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": domain.SessionClosed, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage writes entry to sessionID.
func (r *SessionRepo) AppendMessage(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	m := &domain.SessionMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      string(entry.Role),
		Content:   entry.Message,
		CreatedAt: entry.Timestamp.UTC(),
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if in := entry.Intent; in != nil {
		t := string(in.Type)
		m.IntentType = &t
		if in.Emotion != nil {
			e := string(*in.Emotion)
			m.Emotion = &e
		}
		m.Keywords = strings.Join(in.Keywords, ",")
	}
	return r.DB.WithContext(ctx).Omit("Session").Create(m).Error
}

// ListSessionMessages returns messages ordered deterministically
// (CreatedAt ASC, ID ASC). limit <= 0 returns all.
func (r *SessionRepo) ListSessionMessages(ctx context.Context, sessionID string, limit int) ([]domain.SessionMessage, error) {
	var out []domain.SessionMessage
	q := r.DB.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountSessionMessages uses a raw COUNT so a missing table surfaces as an error.
func (r *SessionRepo) CountSessionMessages(ctx context.Context, sessionID string) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Raw("SELECT COUNT(*) FROM session_messages WHERE session_id = ? AND deleted_at IS NULL", sessionID).Scan(&total).Error
	return total, err
}
