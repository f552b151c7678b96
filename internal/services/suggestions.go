package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

const (
	prayerReminderWindow = 30 * time.Minute
	// emotionInsightThreshold is the number of occurrences among recent
	// emotions that triggers a supportive insight.
	emotionInsightThreshold = 3
	recentEmotionWindow     = 10
)

// Suggester derives proactive suggestions from a context and the clock.
type Suggester struct {
	Now func() time.Time
}

// NewSuggester returns a Suggester using the wall clock.
func NewSuggester() *Suggester { return &Suggester{Now: time.Now} }

// Suggest evaluates every rule independently and returns the results
// stable-sorted by priority, high first.
func (s *Suggester) Suggest(c domain.ConversationContext) []domain.ProactiveSuggestion {
	now := time.Now()
	if s != nil && s.Now != nil {
		now = s.Now()
	}
	out := []domain.ProactiveSuggestion{}

	for _, ev := range c.IslamicContext.TodayEvents {
		msg := ev.Description
		if msg == "" {
			msg = fmt.Sprintf("Today is %s. May it bring you blessings.", ev.Title)
		}
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionCelebration,
			Priority: domain.PriorityHigh,
			Title:    ev.Title,
			Message:  msg,
			Icon:     "🌙",
			Action:   &domain.Action{Label: "Open Calendar", Type: domain.ActionNavigate, Target: "/calendar"},
		})
	}

	if np := c.IslamicContext.NextPrayer; np != nil {
		if at, ok := np.At(now); ok {
			if d := at.Sub(now); d >= 0 && d <= prayerReminderWindow {
				mins := int(d.Round(time.Minute) / time.Minute)
				out = append(out, domain.ProactiveSuggestion{
					Type:     domain.SuggestionReminder,
					Priority: domain.PriorityHigh,
					Title:    fmt.Sprintf("%s is coming up", np.Name),
					Message:  fmt.Sprintf("%s begins in %d minutes, at %s.", np.Name, mins, np.Time),
					Icon:     "🕌",
					Action:   &domain.Action{Label: "Prayer Times", Type: domain.ActionNavigate, Target: "/prayer-times"},
				})
			}
		}
	}

	recent := c.UserPreferences.CommonEmotions
	if len(recent) > recentEmotionWindow {
		recent = recent[len(recent)-recentEmotionWindow:]
	}
	if countOf(recent, domain.EmotionSad) >= emotionInsightThreshold {
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionInsight,
			Priority: domain.PriorityHigh,
			Title:    "We're here for you",
			Message:  "You've been feeling low lately. These duas for comfort may bring some relief.",
			Icon:     "💙",
			Action:   &domain.Action{Label: "Duas for Comfort", Type: domain.ActionNavigate, Target: "/duas/relief"},
		})
	}
	if countOf(recent, domain.EmotionAnxious) >= emotionInsightThreshold {
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionInsight,
			Priority: domain.PriorityHigh,
			Title:    "Finding calm",
			Message:  "You've mentioned feeling anxious a few times. Take a moment with the duas for peace of heart.",
			Icon:     "🤲",
			Action:   &domain.Action{Label: "Duas for Peace", Type: domain.ActionNavigate, Target: "/duas/peace"},
		})
	}

	switch h := now.Hour(); {
	case h >= 5 && h < 7:
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionRecommendation,
			Priority: domain.PriorityMedium,
			Title:    "Morning Dua",
			Message:  "Start your day with the morning adhkar.",
			Icon:     "🌅",
			Action:   &domain.Action{Label: "Morning Duas", Type: domain.ActionNavigate, Target: "/duas/morning"},
		})
	case h >= 21 && h < 23:
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionRecommendation,
			Priority: domain.PriorityMedium,
			Title:    "Evening Dua",
			Message:  "End your day with a dua before sleep.",
			Icon:     "🌃",
			Action:   &domain.Action{Label: "Evening Duas", Type: domain.ActionNavigate, Target: "/duas/evening"},
		})
	}

	idle := c.SessionData.TodayInteractions == 0

	if now.Weekday() == time.Thursday && idle {
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionRecommendation,
			Priority: domain.PriorityMedium,
			Title:    "Dua Kumayl Tonight",
			Message:  "Thursday night is the traditional time to recite Dua Kumayl.",
			Icon:     "📿",
			Action:   &domain.Action{Label: "Dua Kumayl", Type: domain.ActionNavigate, Target: "/duas/kumayl"},
		})
	}

	if now.Weekday() == time.Friday {
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionRecommendation,
			Priority: domain.PriorityHigh,
			Title:    "Blessed Friday",
			Message:  "Jummah Mubarak! Remember Salat al-Jumu'ah and the recitation of Surah al-Kahf today.",
			Icon:     "🕌",
			Action:   &domain.Action{Label: "Friday Duas", Type: domain.ActionNavigate, Target: "/duas/friday"},
		})
	}

	if idle {
		title := "Welcome back"
		if c.UserName != "" {
			title = "Welcome back, " + c.UserName
		}
		out = append(out, domain.ProactiveSuggestion{
			Type:     domain.SuggestionInsight,
			Priority: domain.PriorityLow,
			Title:    title,
			Message:  "It's good to see you. Ask me about prayer times, duas, or how you're feeling.",
			Icon:     "👋",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority.Rank() > out[j].Priority.Rank() })
	return out
}

func countOf(list []domain.Emotion, e domain.Emotion) int {
	n := 0
	for _, x := range list {
		if x == e {
			n++
		}
	}
	return n
}
