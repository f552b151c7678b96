// Package services – ContextManager
//
// ContextManager owns one user's ConversationContext. Every mutating call
// updates the in-memory state first and then writes the whole context through
// to the ContextRepository. When a chat session is known, user and assistant
// messages are also appended to the SessionStore in the background.
//
// Storage failures never reach the caller: they are logged, counted in
// assistant_persistence_failures_total, and dropped. The in-memory state is
// authoritative for the lifetime of the manager.
package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// ContextRepository loads and saves serialized contexts keyed by user id.
type ContextRepository interface {
	// Load returns (nil, nil) when nothing is stored for userID.
	Load(ctx context.Context, userID string) (*domain.ConversationContext, error)
	Save(ctx context.Context, userID string, c domain.ConversationContext) error
}

// SessionStore is the external chat-session collaborator.
type SessionStore interface {
	// GetActiveSession returns (nil, nil) when the user has no open session.
	GetActiveSession(ctx context.Context, userID string) (*domain.ChatSession, error)
	CreateSession(ctx context.Context, userID string) (*domain.ChatSession, error)
	AppendMessage(ctx context.Context, sessionID string, entry domain.HistoryEntry) error
}

const (
	defaultStorageTimeout = 5 * time.Second
	topInsightTopics      = 5
)

// ManagerOptions configures a ContextManager. All fields are optional.
type ManagerOptions struct {
	Sessions       SessionStore
	Now            func() time.Time
	Logger         *zerolog.Logger
	StorageTimeout time.Duration
	// Language seeds PreferredLanguage for new contexts; empty means "en".
	Language string
}

// ContextManager is safe for concurrent use; calls are serialized.
type ContextManager struct {
	userID   string
	repo     ContextRepository
	sessions SessionStore
	now      func() time.Time
	log      zerolog.Logger
	timeout  time.Duration
	lang     string

	// turn serializes whole turns; mu guards state for single calls.
	turn  sync.Mutex
	mu    sync.Mutex
	state *domain.ConversationContext

	// sessMu orders background session work; sessionID is guarded by it.
	sessMu    sync.Mutex
	sessionID string
	inflight  sync.WaitGroup
}

// NewContextManager loads any stored context for userID, or starts from the
// empty defaults when there is none or the load fails.
func NewContextManager(ctx context.Context, userID string, repo ContextRepository, opts ManagerOptions) *ContextManager {
	m := &ContextManager{
		userID:   userID,
		repo:     repo,
		sessions: opts.Sessions,
		now:      opts.Now,
		timeout:  opts.StorageTimeout,
		lang:     opts.Language,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.timeout <= 0 {
		m.timeout = defaultStorageTimeout
	}
	if m.lang == "" {
		m.lang = "en"
	}
	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	m.log = base.With().Str("user_id", userID).Logger()

	tr := otel.Tracer("services/ContextManager")
	ctx, span := tr.Start(ctx, "Load", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if repo != nil {
		lctx, cancel := context.WithTimeout(ctx, m.timeout)
		stored, err := repo.Load(lctx, userID)
		cancel()
		if err != nil {
			m.failed("load", err)
		} else if stored != nil {
			m.state = normalize(stored, userID, m.lang, m.now())
		}
	}
	if m.state == nil {
		m.state = domain.NewConversationContext(userID, m.now())
		m.state.UserPreferences.PreferredLanguage = m.lang
	}
	return m
}

// normalize fills in defaults a stored payload may lack.
func normalize(c *domain.ConversationContext, userID, lang string, now time.Time) *domain.ConversationContext {
	c.UserID = userID
	if c.ConversationHistory == nil {
		c.ConversationHistory = []domain.HistoryEntry{}
	}
	if c.UserPreferences.CommonEmotions == nil {
		c.UserPreferences.CommonEmotions = []domain.Emotion{}
	}
	if c.UserPreferences.FrequentTopics == nil {
		c.UserPreferences.FrequentTopics = []string{}
	}
	if c.UserPreferences.PreferredLanguage == "" {
		c.UserPreferences.PreferredLanguage = lang
	}
	if c.SessionData.SessionStart.IsZero() {
		c.SessionData.SessionStart = now
	}
	return c
}

// UserID returns the owner of this manager.
func (m *ContextManager) UserID() string { return m.userID }

// AddMessage appends a history entry and folds the intent into the
// preference histories. User messages bump TodayInteractions.
func (m *ContextManager) AddMessage(ctx context.Context, role domain.Role, message string, intent *domain.Intent) {
	ctx, span := m.span(ctx, "AddMessage", attribute.String("role", string(role)))
	defer span.End()

	entry := domain.HistoryEntry{Role: role, Message: message, Timestamp: m.now()}
	if intent != nil {
		in := intent.Clone()
		entry.Intent = &in
	}

	m.mu.Lock()
	c := m.state
	c.ConversationHistory = append(c.ConversationHistory, entry)
	if n := len(c.ConversationHistory); n > domain.MaxHistoryEntries {
		c.ConversationHistory = append([]domain.HistoryEntry(nil), c.ConversationHistory[n-domain.MaxHistoryEntries:]...)
	}
	if role == domain.RoleUser {
		c.SessionData.TodayInteractions++
	}
	if entry.Intent != nil {
		if entry.Intent.Emotion != nil {
			c.UserPreferences.CommonEmotions = domain.PushCappedUnique(c.UserPreferences.CommonEmotions, *entry.Intent.Emotion, domain.MaxCommonEmotions)
		}
		for _, kw := range entry.Intent.Keywords {
			c.UserPreferences.FrequentTopics = domain.PushCappedUnique(c.UserPreferences.FrequentTopics, kw, domain.MaxFrequentTopics)
		}
	}
	m.persistLocked(ctx)
	hasName := c.UserName != ""
	m.mu.Unlock()

	if m.sessions != nil && hasName {
		m.background(func(bctx context.Context) {
			sid := m.ensureSessionLocked(bctx)
			if sid == "" {
				return
			}
			if err := m.sessions.AppendMessage(bctx, sid, entry); err != nil {
				m.failed("session_append", err, "session_id", sid)
			}
		})
	}
}

// UpdateIslamicContext shallow-merges patch into the Islamic context.
func (m *ContextManager) UpdateIslamicContext(ctx context.Context, patch domain.IslamicContextPatch) {
	ctx, span := m.span(ctx, "UpdateIslamicContext")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()
	patch.Apply(&m.state.IslamicContext)
	m.persistLocked(ctx)
}

// SetUserName records the display name and starts session get-or-create in
// the background.
func (m *ContextManager) SetUserName(ctx context.Context, name string) {
	ctx, span := m.span(ctx, "SetUserName")
	defer span.End()

	m.mu.Lock()
	m.state.UserName = name
	m.persistLocked(ctx)
	m.mu.Unlock()

	if m.sessions != nil {
		m.background(func(bctx context.Context) { m.ensureSessionLocked(bctx) })
	}
}

// SetCurrentEmotion sets the session's current emotion.
func (m *ContextManager) SetCurrentEmotion(ctx context.Context, e domain.Emotion) {
	ctx, span := m.span(ctx, "SetCurrentEmotion", attribute.String("emotion", string(e)))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SessionData.CurrentEmotion = &e
	m.persistLocked(ctx)
}

// SetLastVisitedPage records the page the user is looking at.
func (m *ContextManager) SetLastVisitedPage(ctx context.Context, page string) {
	ctx, span := m.span(ctx, "SetLastVisitedPage")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SessionData.LastVisitedPage = page
	m.persistLocked(ctx)
}

// ClearHistory empties the history and resets TodayInteractions.
func (m *ContextManager) ClearHistory(ctx context.Context) {
	ctx, span := m.span(ctx, "ClearHistory")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ConversationHistory = []domain.HistoryEntry{}
	m.state.SessionData.TodayInteractions = 0
	m.persistLocked(ctx)
}

// Context returns a deep copy of the current state.
func (m *ContextManager) Context() domain.ConversationContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// RecentMessages returns up to the last n history entries, oldest first.
func (m *ContextManager) RecentMessages(n int) []domain.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.state.ConversationHistory
	if n <= 0 {
		return []domain.HistoryEntry{}
	}
	if n > len(h) {
		n = len(h)
	}
	snap := domain.ConversationContext{ConversationHistory: h[len(h)-n:]}
	return snap.Clone().ConversationHistory
}

// SituationalContext builds the generator input from the stored Islamic
// context and user name.
func (m *ContextManager) SituationalContext() *domain.SituationalContext {
	c := m.Context()
	return &domain.SituationalContext{
		UserName:    c.UserName,
		HijriDate:   c.IslamicContext.CurrentHijriDate,
		TodayEvents: c.IslamicContext.TodayEvents,
		PrayerTimes: c.IslamicContext.PrayerTimes,
		NextPrayer:  c.IslamicContext.NextPrayer,
	}
}

// UserInsights aggregates the preference histories without mutating state.
// Ties are broken by first occurrence.
func (m *ContextManager) UserInsights() domain.UserInsights {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.state

	out := domain.UserInsights{
		TopTopics:         rankByCount(c.UserPreferences.FrequentTopics, topInsightTopics),
		TotalInteractions: c.SessionData.TodayInteractions,
		SessionDuration:   m.now().Sub(c.SessionData.SessionStart),
	}
	if top := rankByCount(c.UserPreferences.CommonEmotions, 1); len(top) == 1 {
		e := top[0]
		out.MostCommonEmotion = &e
	}
	return out
}

// rankByCount returns up to limit distinct values of list ordered by
// occurrence count, ties in first-seen order.
func rankByCount[T comparable](list []T, limit int) []T {
	counts := make(map[T]int, len(list))
	var order []T
	for _, v := range list {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		return []T{}
	}
	return order
}

// Exclusive runs fn while holding the manager's turn lock, so that the
// several calls making up one turn are not interleaved with another turn.
func (m *ContextManager) Exclusive(fn func()) {
	m.turn.Lock()
	defer m.turn.Unlock()
	fn()
}

// Wait blocks until background session writes have finished.
func (m *ContextManager) Wait() { m.inflight.Wait() }

// persistLocked writes the current state through. Caller holds m.mu.
func (m *ContextManager) persistLocked(ctx context.Context) {
	if m.repo == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()
	if err := m.repo.Save(sctx, m.userID, m.state.Clone()); err != nil {
		m.failed("save", err)
	}
}

// background runs fn detached from the caller with its own timeout.
func (m *ContextManager) background(fn func(ctx context.Context)) {
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.sessMu.Lock()
		defer m.sessMu.Unlock()
		fn(ctx)
	}()
}

// ensureSessionLocked returns the session id, looking up or creating the
// user's open session on first use. Caller holds m.sessMu. Returns "" on
// failure.
func (m *ContextManager) ensureSessionLocked(ctx context.Context) string {
	if m.sessionID != "" {
		return m.sessionID
	}
	s, err := m.sessions.GetActiveSession(ctx, m.userID)
	if err != nil {
		m.failed("session_get", err)
		return ""
	}
	if s == nil {
		if s, err = m.sessions.CreateSession(ctx, m.userID); err != nil {
			m.failed("session_create", err)
			return ""
		}
	}
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return ""
	}
	m.sessionID = s.ID
	return m.sessionID
}

// SessionID reports the backing session id, or "" if none is known yet.
func (m *ContextManager) SessionID() string {
	m.sessMu.Lock()
	defer m.sessMu.Unlock()
	return m.sessionID
}

func (m *ContextManager) failed(op string, err error, kv ...string) {
	persistenceFailures.WithLabelValues(op).Inc()
	ev := m.log.Warn().Err(err).Str("op", op)
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Str(kv[i], kv[i+1])
	}
	ev.Msg("context persistence failed")
}

func (m *ContextManager) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("user.id", m.userID))
	return otel.Tracer("services/ContextManager").Start(ctx, name, trace.WithAttributes(attrs...))
}
