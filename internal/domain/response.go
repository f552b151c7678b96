package domain

import "time"

// ActionType tells the host UI what to do with an Action target.
type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionDisplay  ActionType = "display"
	ActionExternal ActionType = "external"
)

// Action is a navigable directive attached to a reply. Target is a route
// path or a URL depending on Type.
type Action struct {
	Label  string     `json:"label"`
	Type   ActionType `json:"type"`
	Target string     `json:"target"`
}

// BotResponse is the assistant's reply for one turn. Text is never empty.
type BotResponse struct {
	Text         string   `json:"text"`
	Suggestions  []string `json:"suggestions,omitempty"`
	Actions      []Action `json:"actions,omitempty"`
	QuickReplies []string `json:"quick_replies,omitempty"`
}

// IslamicEvent is a calendar occasion that falls on the current day.
type IslamicEvent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PrayerTimes holds the five daily prayer times as "HH:MM" strings.
type PrayerTimes struct {
	Fajr    string `json:"fajr"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// NextPrayer names the upcoming prayer and its "HH:MM" start time.
type NextPrayer struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// At resolves the prayer time on the calendar day of ref, in ref's location.
// It returns false when Time is not a valid "HH:MM" value.
func (p NextPrayer) At(ref time.Time) (time.Time, bool) {
	t, err := time.Parse("15:04", p.Time)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, ref.Location()), true
}

// SituationalContext is the optional per-turn input the generator uses to
// personalise replies. It is supplied by the caller; the generator never
// fetches it.
type SituationalContext struct {
	UserName    string         `json:"user_name,omitempty"`
	HijriDate   string         `json:"hijri_date,omitempty"`
	TodayEvents []IslamicEvent `json:"today_events,omitempty"`
	PrayerTimes *PrayerTimes   `json:"prayer_times,omitempty"`
	NextPrayer  *NextPrayer    `json:"next_prayer,omitempty"`
}
