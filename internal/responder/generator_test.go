package responder

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-chat-companion/internal/domain"
	"github.com/tbourn/go-chat-companion/internal/nlu"
)

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 4, hour, 10, 0, 0, time.UTC) }
}

func newTestGenerator(hour int) *Generator {
	return &Generator{Picker: rand.New(rand.NewPCG(1, 2)), Now: at(hour)}
}

func emo(e domain.Emotion) *domain.Emotion { return &e }

func TestGenerate_AnxiousScenario(t *testing.T) {
	in := nlu.NewClassifier().Classify("I am feeling very anxious about my exam")
	resp := newTestGenerator(10).Generate(in, "I am feeling very anxious about my exam", nil)

	if strings.TrimSpace(resp.Text) == "" {
		t.Fatal("text must not be empty")
	}
	found := false
	for _, a := range resp.Actions {
		if a.Type == domain.ActionNavigate && (strings.Contains(a.Target, "peace") || strings.Contains(a.Target, "protection")) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a peace/protection action, got %+v", resp.Actions)
	}
	if len(resp.QuickReplies) != 4 {
		t.Fatalf("quick replies = %d; want 4", len(resp.QuickReplies))
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
}

func TestGenerate_EveryEmotionHasContent(t *testing.T) {
	g := newTestGenerator(10)
	for _, e := range domain.Emotions {
		resp := g.Generate(domain.Intent{Type: domain.IntentEmotion, Emotion: emo(e)}, "", nil)
		if resp.Text == "" || len(resp.Actions) == 0 {
			t.Errorf("emotion %s: empty reply %+v", e, resp)
		}
		for _, a := range resp.Actions {
			if a.Type != domain.ActionNavigate || a.Target == "" || a.Label == "" {
				t.Errorf("emotion %s: bad action %+v", e, a)
			}
		}
	}
}

func TestGenerate_UnknownEmotionFallsBack(t *testing.T) {
	g := newTestGenerator(10)
	for _, in := range []domain.Intent{
		{Type: domain.IntentEmotion, Emotion: emo("elated")},
		{Type: domain.IntentEmotion},
	} {
		resp := g.Generate(in, "", nil)
		if resp.Text != emotionFallback || len(resp.Actions) != 0 {
			t.Fatalf("got %+v; want generic fallback without actions", resp)
		}
	}
}

func TestGenerate_NonTextFieldsAreStable(t *testing.T) {
	g := NewGenerator()
	cases := []domain.Intent{
		{Type: domain.IntentEmotion, Emotion: emo(domain.EmotionSad)},
		{Type: domain.IntentNavigation, Keywords: []string{"library"}},
		{Type: domain.IntentPrayer},
		{Type: domain.IntentRecommendation},
		{Type: domain.IntentQuestion},
		{Type: domain.IntentGeneral},
	}
	for _, in := range cases {
		a := g.Generate(in, "hello there", nil)
		b := g.Generate(in, "hello there", nil)
		if !reflect.DeepEqual(a.Actions, b.Actions) || !reflect.DeepEqual(a.Suggestions, b.Suggestions) || !reflect.DeepEqual(a.QuickReplies, b.QuickReplies) {
			t.Fatalf("%s: non-text fields differ between calls", in.Type)
		}
	}
}

func TestGenerate_ResultsDoNotAliasTables(t *testing.T) {
	g := newTestGenerator(10)
	resp := g.Generate(domain.Intent{Type: domain.IntentPrayer}, "", nil)
	resp.Actions[0].Target = "/mutated"
	again := g.Generate(domain.Intent{Type: domain.IntentPrayer}, "", nil)
	if again.Actions[0].Target == "/mutated" {
		t.Fatal("response shares backing array with content table")
	}
}

func TestGenerate_NavigationCalendar(t *testing.T) {
	in := nlu.NewClassifier().Classify("show me the calendar")
	resp := newTestGenerator(10).Generate(in, "show me the calendar", nil)
	if len(resp.Actions) != 1 || resp.Actions[0].Target != "/calendar" {
		t.Fatalf("actions = %+v; want single /calendar action", resp.Actions)
	}
	if !strings.Contains(resp.Text, "Islamic Calendar") {
		t.Fatalf("text %q should mention Islamic Calendar", resp.Text)
	}
}

func TestGenerate_NavigationContainmentBothWays(t *testing.T) {
	g := newTestGenerator(10)
	cases := map[string]string{
		"imams":  "/imams",
		"dua":    "/duas",
		"cal":    "/calendar",
		"prayer": "/prayer-times",
	}
	for kw, want := range cases {
		resp := g.Generate(domain.Intent{Type: domain.IntentNavigation, Keywords: []string{kw}}, "", nil)
		if len(resp.Actions) != 1 || resp.Actions[0].Target != want {
			t.Errorf("keyword %q: actions = %+v; want %s", kw, resp.Actions, want)
		}
	}
}

func TestGenerate_NavigationFallbackMenu(t *testing.T) {
	g := newTestGenerator(10)
	for _, in := range []domain.Intent{
		{Type: domain.IntentNavigation},
		{Type: domain.IntentNavigation, Keywords: []string{"settings"}},
	} {
		resp := g.Generate(in, "", nil)
		if resp.Text != navigationFallback || len(resp.Actions) != len(navigationMenu) {
			t.Fatalf("got %+v; want fallback menu", resp)
		}
	}
}

func TestNextPrayerName_Bands(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "Fajr"}, {4, "Fajr"}, {5, "Dhuhr"}, {11, "Dhuhr"}, {12, "Asr"}, {13, "Asr"},
		{14, "Asr"}, {15, "Maghrib"}, {17, "Maghrib"}, {18, "Isha"}, {19, "Isha"}, {20, "Fajr"}, {23, "Fajr"},
	}
	for _, tc := range cases {
		if got := NextPrayerName(at(tc.hour)()); got != tc.want {
			t.Errorf("hour %d: got %s; want %s", tc.hour, got, tc.want)
		}
	}
}

func TestGenerate_PrayerWithContext(t *testing.T) {
	in := nlu.NewClassifier().Classify("what time is maghrib")
	sc := &domain.SituationalContext{PrayerTimes: &domain.PrayerTimes{
		Fajr: "05:12", Dhuhr: "12:20", Asr: "15:45", Maghrib: "18:30", Isha: "19:50",
	}}
	resp := newTestGenerator(13).Generate(in, "what time is maghrib", sc)

	for _, tm := range []string{"05:12", "12:20", "15:45", "18:30", "19:50"} {
		if !strings.Contains(resp.Text, tm) {
			t.Fatalf("text missing %s: %q", tm, resp.Text)
		}
	}
	if !strings.Contains(resp.Text, "next prayer is Asr") {
		t.Fatalf("text should name Asr as next: %q", resp.Text)
	}
	if len(resp.Actions) != 3 || len(resp.QuickReplies) != 4 {
		t.Fatalf("actions=%d quick=%d; want 3/4", len(resp.Actions), len(resp.QuickReplies))
	}
}

func TestGenerate_PrayerWithoutContext(t *testing.T) {
	resp := newTestGenerator(13).Generate(domain.Intent{Type: domain.IntentPrayer}, "", &domain.SituationalContext{})
	if resp.Text != prayerGeneric || len(resp.Actions) != 3 || len(resp.QuickReplies) != 4 {
		t.Fatalf("got %+v", resp)
	}
}

func TestGenerate_Recommendation(t *testing.T) {
	g := newTestGenerator(10)
	in := domain.Intent{Type: domain.IntentRecommendation}

	plain := g.Generate(in, "", nil)
	if plain.Text != weeklyPractice {
		t.Fatalf("expected weekly template, got %q", plain.Text)
	}

	sc := &domain.SituationalContext{TodayEvents: []domain.IslamicEvent{
		{Title: "Eid al-Ghadir", Description: "Declaration at Ghadir Khumm"},
		{Title: "Day of Mubahala"},
	}}
	withEvents := g.Generate(in, "", sc)
	if !strings.Contains(withEvents.Text, "Eid al-Ghadir") || !strings.Contains(withEvents.Text, "Day of Mubahala") {
		t.Fatalf("events not listed: %q", withEvents.Text)
	}
	if !reflect.DeepEqual(plain.Actions, practiceActions) || !reflect.DeepEqual(withEvents.Actions, practiceActions) {
		t.Fatal("recommendation replies must carry the practice actions")
	}
}

func TestGenerate_QuestionOrderedTable(t *testing.T) {
	g := newTestGenerator(10)
	in := domain.Intent{Type: domain.IntentQuestion}

	// Both "ziyarat" and "ashura" occur; "ziyarat" is earlier in the table.
	resp := g.Generate(in, "What is Ziyarat Ashura?", nil)
	if resp.Text != qaTable[0].answer {
		t.Fatalf("got %q; want first table entry", resp.Text)
	}

	resp = g.Generate(in, "why do people walk for Arbaeen?", nil)
	if !strings.Contains(resp.Text, "forty days") {
		t.Fatalf("got %q", resp.Text)
	}

	resp = g.Generate(in, "what's the weather like?", nil)
	if resp.Text != questionDeflection || len(resp.Actions) == 0 {
		t.Fatalf("got %+v; want deflection", resp)
	}
}

func TestGenerate_General(t *testing.T) {
	g := newTestGenerator(10)
	in := domain.Intent{Type: domain.IntentGeneral}

	for _, msg := range []string{"hi", "Hello!", "hey there", "salam", "Assalamu alaikum", "السلام عليكم"} {
		resp := g.Generate(in, msg, nil)
		if !strings.HasSuffix(resp.Text, greetingInvite) || len(resp.Actions) != 0 {
			t.Errorf("%q: got %+v; want greeting", msg, resp)
		}
	}

	named := g.Generate(in, "hello", &domain.SituationalContext{UserName: "Zahra"})
	if !strings.Contains(named.Text, "Zahra") {
		t.Fatalf("greeting should use the name: %q", named.Text)
	}

	resp := g.Generate(in, "this thing", nil)
	if resp.Text != capabilityOverview || len(resp.Actions) != 3 {
		t.Fatalf("got %+v; want capability overview", resp)
	}

	// "history" starts with "hi" but is not a greeting.
	if resp := g.Generate(in, "history", nil); resp.Text != capabilityOverview {
		t.Fatalf("history matched greeting: %q", resp.Text)
	}
}

func TestGenerate_SeededPickerIsDeterministic(t *testing.T) {
	in := domain.Intent{Type: domain.IntentEmotion, Emotion: emo(domain.EmotionHappy)}
	a := newTestGenerator(10).Generate(in, "", nil)
	b := newTestGenerator(10).Generate(in, "", nil)
	if a.Text != b.Text {
		t.Fatalf("same seed produced %q and %q", a.Text, b.Text)
	}
}

func TestGenerate_ZeroValueGenerator(t *testing.T) {
	var g Generator
	resp := g.Generate(domain.Intent{Type: domain.IntentGeneral}, "hi", nil)
	if resp.Text == "" {
		t.Fatal("zero Generator must still reply")
	}
}
