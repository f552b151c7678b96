// Package responder turns a classified Intent into a BotResponse using canned
// content tables. Generation has no side effects; the only external inputs
// are the optional SituationalContext, the injected clock, and the injected
// random source used to pick from message pools.
package responder

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// Picker chooses an index in [0,n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Generator builds replies. The zero value is usable and falls back to the
// process-wide random source and time.Now.
type Generator struct {
	Picker Picker
	Now    func() time.Time
}

// NewGenerator returns a Generator with production wiring.
func NewGenerator() *Generator {
	return &Generator{Picker: globalPicker{}, Now: time.Now}
}

func (g *Generator) pick(pool []string) string {
	p := g.Picker
	if p == nil {
		p = globalPicker{}
	}
	return pool[p.IntN(len(pool))]
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Generate dispatches on intent.Type. sc may be nil.
func (g *Generator) Generate(intent domain.Intent, raw string, sc *domain.SituationalContext) domain.BotResponse {
	switch intent.Type {
	case domain.IntentEmotion:
		return g.emotion(intent)
	case domain.IntentNavigation:
		return navigation(intent)
	case domain.IntentPrayer:
		return g.prayer(sc)
	case domain.IntentRecommendation:
		return recommendation(sc)
	case domain.IntentQuestion:
		return question(raw)
	default:
		return g.general(raw, sc)
	}
}

func (g *Generator) emotion(intent domain.Intent) domain.BotResponse {
	if intent.Emotion == nil {
		return domain.BotResponse{Text: emotionFallback}
	}
	c, ok := emotionTable[*intent.Emotion]
	if !ok || len(c.messages) == 0 {
		return domain.BotResponse{Text: emotionFallback}
	}
	return domain.BotResponse{
		Text:         g.pick(c.messages),
		Actions:      cloneActions(c.prayers),
		Suggestions:  cloneStrings(c.suggestions),
		QuickReplies: cloneStrings(emotionQuickReplies),
	}
}

func navigation(intent domain.Intent) domain.BotResponse {
	if len(intent.Keywords) > 0 {
		kw := strings.ToLower(intent.Keywords[0])
		for _, r := range routes {
			if strings.Contains(r.key, kw) || strings.Contains(kw, r.key) {
				return domain.BotResponse{
					Text:    r.description,
					Actions: []domain.Action{navigate(r.label, r.target)},
				}
			}
		}
	}
	return domain.BotResponse{Text: navigationFallback, Actions: cloneActions(navigationMenu)}
}

// NextPrayerName returns the upcoming prayer for the hour of t using a
// fixed five-band partition of the day.
func NextPrayerName(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "Dhuhr"
	case h >= 12 && h < 15:
		return "Asr"
	case h >= 15 && h < 18:
		return "Maghrib"
	case h >= 18 && h < 20:
		return "Isha"
	default:
		return "Fajr"
	}
}

func (g *Generator) prayer(sc *domain.SituationalContext) domain.BotResponse {
	resp := domain.BotResponse{
		Text:         prayerGeneric,
		Actions:      cloneActions(practiceActions),
		QuickReplies: cloneStrings(prayerQuickReplies),
	}
	if sc == nil || sc.PrayerTimes == nil {
		return resp
	}
	pt := sc.PrayerTimes
	var b strings.Builder
	if sc.UserName != "" {
		fmt.Fprintf(&b, "%s, here are today's prayer times:\n", sc.UserName)
	} else {
		b.WriteString("Here are today's prayer times:\n")
	}
	fmt.Fprintf(&b, "Fajr: %s\nDhuhr: %s\nAsr: %s\nMaghrib: %s\nIsha: %s\n", pt.Fajr, pt.Dhuhr, pt.Asr, pt.Maghrib, pt.Isha)
	fmt.Fprintf(&b, "The next prayer is %s.", NextPrayerName(g.now()))
	resp.Text = b.String()
	return resp
}

func recommendation(sc *domain.SituationalContext) domain.BotResponse {
	resp := domain.BotResponse{Text: weeklyPractice, Actions: cloneActions(practiceActions)}
	if sc == nil || len(sc.TodayEvents) == 0 {
		return resp
	}
	var b strings.Builder
	b.WriteString("Today is a special day:\n")
	for _, e := range sc.TodayEvents {
		if e.Description != "" {
			fmt.Fprintf(&b, "- %s: %s\n", e.Title, e.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", e.Title)
		}
	}
	b.WriteString("Consider visiting the related duas and ziyarat to mark the occasion.")
	resp.Text = b.String()
	return resp
}

func question(raw string) domain.BotResponse {
	lower := strings.ToLower(raw)
	for _, e := range qaTable {
		if strings.Contains(lower, e.trigger) {
			return domain.BotResponse{Text: e.answer}
		}
	}
	return domain.BotResponse{Text: questionDeflection, Actions: cloneActions(questionActions)}
}

func (g *Generator) general(raw string, sc *domain.SituationalContext) domain.BotResponse {
	if greetingRE.MatchString(raw) {
		hello := g.pick(greetings)
		if sc != nil && sc.UserName != "" {
			hello = fmt.Sprintf("%s Good to have you here, %s.", hello, sc.UserName)
		}
		return domain.BotResponse{Text: hello + " " + greetingInvite}
	}
	return domain.BotResponse{Text: capabilityOverview, Actions: cloneActions(capabilityActions)}
}

func cloneActions(in []domain.Action) []domain.Action {
	return append([]domain.Action(nil), in...)
}

func cloneStrings(in []string) []string {
	return append([]string(nil), in...)
}
