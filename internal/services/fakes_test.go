package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

var errBoom = errors.New("boom")

// ----- Fake context repository -----

type fakeContextRepo struct {
	mu      sync.Mutex
	stored  map[string]domain.ConversationContext
	saves   int
	loadErr error
	saveErr error
}

func newFakeContextRepo() *fakeContextRepo {
	return &fakeContextRepo{stored: map[string]domain.ConversationContext{}}
}

func (r *fakeContextRepo) Load(ctx context.Context, userID string) (*domain.ConversationContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	c, ok := r.stored[userID]
	if !ok {
		return nil, nil
	}
	out := c.Clone()
	return &out, nil
}

func (r *fakeContextRepo) Save(ctx context.Context, userID string, c domain.ConversationContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored[userID] = c
	return nil
}

func (r *fakeContextRepo) get(userID string) (domain.ConversationContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.stored[userID]
	return c, ok
}

func (r *fakeContextRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// ----- Fake session store -----

type fakeSessionStore struct {
	mu        sync.Mutex
	active    map[string]*domain.ChatSession
	created   int
	messages  map[string][]domain.HistoryEntry
	getErr    error
	appendErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		active:   map[string]*domain.ChatSession{},
		messages: map[string][]domain.HistoryEntry{},
	}
}

func (s *fakeSessionStore) GetActiveSession(ctx context.Context, userID string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.active[userID], nil
}

func (s *fakeSessionStore) CreateSession(ctx context.Context, userID string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	sess := &domain.ChatSession{ID: "s" + strconv.Itoa(s.created), UserID: userID, Status: domain.SessionOpen}
	s.active[userID] = sess
	return sess, nil
}

func (s *fakeSessionStore) AppendMessage(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.messages[sessionID] = append(s.messages[sessionID], entry)
	return nil
}

func (s *fakeSessionStore) snapshot(sessionID string) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HistoryEntry(nil), s.messages[sessionID]...)
}

func (s *fakeSessionStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// ----- Helpers -----

// fixedClock returns a clock pinned at t that can be advanced.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func emotionIntent(e domain.Emotion, keywords ...string) *domain.Intent {
	return &domain.Intent{Type: domain.IntentEmotion, Confidence: 0.9, Emotion: &e, Keywords: keywords}
}
