package domain

import (
	"time"

	"gorm.io/gorm"
)

// StoredContext is the key-value row holding a serialized
// ConversationContext, keyed by user id.
type StoredContext struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the database table name for StoredContext.
func (StoredContext) TableName() string { return "conversation_contexts" }

// Session statuses.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// ChatSession is the external chat-session handle a context manager writes
// messages against. A user has at most one open session at a time.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: owner; indexed together with Status for the open-session lookup.
//   - Status: "open" or "closed".
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type ChatSession struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_sessions,priority:1"`
	Status    string         `json:"status"     gorm:"type:varchar(16);not null;default:'open';index:idx_user_sessions,priority:2;check:status IN ('open','closed')"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }

// SessionMessage is one message written to a chat session. Intent metadata
// is optional and only present for classified user messages.
//
// Keywords is stored as a comma-separated list.
type SessionMessage struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	SessionID  string         `json:"session_id"  gorm:"type:char(36);not null;index:idx_session_msgs,priority:1"`
	Role       string         `json:"role"        gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content    string         `json:"content"     gorm:"type:text;not null"`
	IntentType *string        `json:"intent_type,omitempty" gorm:"type:varchar(32)"`
	Emotion    *string        `json:"emotion,omitempty"     gorm:"type:varchar(32)"`
	Keywords   string         `json:"keywords,omitempty"    gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"  gorm:"index:idx_session_msgs,priority:2"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	// Session is the parent handle. Messages are cascade-deleted with it.
	Session ChatSession `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SessionMessage.
func (SessionMessage) TableName() string { return "session_messages" }
