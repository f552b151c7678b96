package domain

import "time"

// Caps applied to the per-session histories.
const (
	MaxHistoryEntries = 50
	MaxCommonEmotions = 10
	MaxFrequentTopics = 20
)

// Role identifies the author of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryEntry is one recorded message in a conversation.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Intent    *Intent   `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserPreferences collects derived and user-supplied preferences.
//
// CommonEmotions and FrequentTopics are capped histories of distinct values
// ordered by most recent occurrence (last element is the newest).
type UserPreferences struct {
	CommonEmotions    []Emotion `json:"common_emotions"`
	FrequentTopics    []string  `json:"frequent_topics"`
	PreferredLanguage string    `json:"preferred_language"`
	PrayerReminders   bool      `json:"prayer_reminders"`
}

// SessionData holds per-session counters and state.
//
// TodayInteractions counts user messages since the session started or since
// the last ClearHistory; it is not reset at midnight.
type SessionData struct {
	LastVisitedPage   string    `json:"last_visited_page,omitempty"`
	TodayInteractions int       `json:"today_interactions"`
	SessionStart      time.Time `json:"session_start"`
	CurrentEmotion    *Emotion  `json:"current_emotion,omitempty"`
}

// IslamicContext is the situational snapshot supplied by the calendar and
// prayer-times provider.
type IslamicContext struct {
	CurrentHijriDate string         `json:"current_hijri_date,omitempty"`
	TodayEvents      []IslamicEvent `json:"today_events,omitempty"`
	NextPrayer       *NextPrayer    `json:"next_prayer,omitempty"`
	PrayerTimes      *PrayerTimes   `json:"prayer_times,omitempty"`
}

// IslamicContextPatch is a shallow update of IslamicContext. Nil fields are
// left untouched.
type IslamicContextPatch struct {
	CurrentHijriDate *string         `json:"current_hijri_date,omitempty"`
	TodayEvents      *[]IslamicEvent `json:"today_events,omitempty"`
	NextPrayer       *NextPrayer     `json:"next_prayer,omitempty"`
	PrayerTimes      *PrayerTimes    `json:"prayer_times,omitempty"`
}

// Apply merges the non-nil fields of p into c.
func (p IslamicContextPatch) Apply(c *IslamicContext) {
	if p.CurrentHijriDate != nil {
		c.CurrentHijriDate = *p.CurrentHijriDate
	}
	if p.TodayEvents != nil {
		c.TodayEvents = append([]IslamicEvent(nil), (*p.TodayEvents)...)
	}
	if p.NextPrayer != nil {
		np := *p.NextPrayer
		c.NextPrayer = &np
	}
	if p.PrayerTimes != nil {
		pt := *p.PrayerTimes
		c.PrayerTimes = &pt
	}
}

// ConversationContext is the full per-user session state owned by one
// context manager.
type ConversationContext struct {
	UserID              string          `json:"user_id"`
	UserName            string          `json:"user_name,omitempty"`
	ConversationHistory []HistoryEntry  `json:"conversation_history"`
	UserPreferences     UserPreferences `json:"user_preferences"`
	SessionData         SessionData     `json:"session_data"`
	IslamicContext      IslamicContext  `json:"islamic_context"`
}

// NewConversationContext returns the empty default state for userID.
func NewConversationContext(userID string, now time.Time) *ConversationContext {
	return &ConversationContext{
		UserID:              userID,
		ConversationHistory: []HistoryEntry{},
		UserPreferences: UserPreferences{
			CommonEmotions:    []Emotion{},
			FrequentTopics:    []string{},
			PreferredLanguage: "en",
			PrayerReminders:   true,
		},
		SessionData: SessionData{SessionStart: now},
	}
}

// Clone returns a deep copy so callers can read it without sharing slices
// with the owner.
func (c *ConversationContext) Clone() ConversationContext {
	out := *c

	out.ConversationHistory = make([]HistoryEntry, len(c.ConversationHistory))
	for i, h := range c.ConversationHistory {
		if h.Intent != nil {
			in := h.Intent.Clone()
			h.Intent = &in
		}
		out.ConversationHistory[i] = h
	}

	out.UserPreferences.CommonEmotions = append([]Emotion{}, c.UserPreferences.CommonEmotions...)
	out.UserPreferences.FrequentTopics = append([]string{}, c.UserPreferences.FrequentTopics...)

	if c.SessionData.CurrentEmotion != nil {
		e := *c.SessionData.CurrentEmotion
		out.SessionData.CurrentEmotion = &e
	}

	out.IslamicContext.TodayEvents = append([]IslamicEvent(nil), c.IslamicContext.TodayEvents...)
	if c.IslamicContext.NextPrayer != nil {
		np := *c.IslamicContext.NextPrayer
		out.IslamicContext.NextPrayer = &np
	}
	if c.IslamicContext.PrayerTimes != nil {
		pt := *c.IslamicContext.PrayerTimes
		out.IslamicContext.PrayerTimes = &pt
	}
	return out
}

// UserInsights is an aggregated, read-only view over a context.
type UserInsights struct {
	MostCommonEmotion *Emotion      `json:"most_common_emotion,omitempty"`
	TopTopics         []string      `json:"top_topics"`
	TotalInteractions int           `json:"total_interactions"`
	SessionDuration   time.Duration `json:"session_duration"`
}

// PushCappedUnique appends v to list, first removing any earlier occurrence,
// and keeps only the last max elements.
func PushCappedUnique[T comparable](list []T, v T, max int) []T {
	out := make([]T, 0, len(list)+1)
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	out = append(out, v)
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
