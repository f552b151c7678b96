package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

func newTestCompanion(t *testing.T) (*CompanionService, *fakeContextRepo, *fakeSessionStore) {
	t.Helper()
	repo := newFakeContextRepo()
	store := newFakeSessionStore()
	reg := NewManagerRegistry(repo, ManagerOptions{Sessions: store, StorageTimeout: time.Second}, time.Minute)
	t.Cleanup(reg.Drain)
	return NewCompanionService(reg, 200), repo, store
}

func TestTurn_EmotionFlow(t *testing.T) {
	s, repo, store := newTestCompanion(t)
	ctx := context.Background()

	res, err := s.Turn(ctx, "u1", "  I am feeling very anxious about my exam  ", "Zahra")
	if err != nil {
		t.Fatalf("Turn error: %v", err)
	}
	if res.Intent.Type != domain.IntentEmotion || *res.Intent.Emotion != domain.EmotionAnxious {
		t.Fatalf("intent = %+v", res.Intent)
	}
	if res.Response.Text == "" || len(res.Response.Actions) == 0 {
		t.Fatalf("response = %+v", res.Response)
	}

	c, _ := s.Context(ctx, "u1")
	if len(c.ConversationHistory) != 2 {
		t.Fatalf("history = %d; want user+assistant", len(c.ConversationHistory))
	}
	if c.ConversationHistory[0].Role != domain.RoleUser || c.ConversationHistory[0].Message != "I am feeling very anxious about my exam" {
		t.Fatalf("user entry = %+v", c.ConversationHistory[0])
	}
	if c.ConversationHistory[1].Role != domain.RoleAssistant || c.ConversationHistory[1].Message != res.Response.Text {
		t.Fatalf("assistant entry = %+v", c.ConversationHistory[1])
	}
	if c.UserName != "Zahra" || c.SessionData.CurrentEmotion == nil || *c.SessionData.CurrentEmotion != domain.EmotionAnxious {
		t.Fatalf("context = %+v", c)
	}
	if c.SessionData.TodayInteractions != 1 {
		t.Fatalf("interactions = %d; want 1", c.SessionData.TodayInteractions)
	}
	if _, ok := repo.get("u1"); !ok {
		t.Fatal("context should be persisted")
	}

	s.Managers.Drain()
	if got := len(store.snapshot("s1")); got != 2 {
		t.Fatalf("session messages = %d; want 2", got)
	}
}

func TestTurn_PrayerUsesStoredPrayerTimes(t *testing.T) {
	s, _, _ := newTestCompanion(t)
	ctx := context.Background()

	pt := domain.PrayerTimes{Fajr: "05:10", Dhuhr: "12:15", Asr: "15:40", Maghrib: "18:25", Isha: "19:45"}
	if err := s.UpdateIslamicContext(ctx, "u1", domain.IslamicContextPatch{PrayerTimes: &pt}); err != nil {
		t.Fatal(err)
	}
	res, err := s.Turn(ctx, "u1", "what time is maghrib", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent.Type != domain.IntentPrayer || !strings.Contains(res.Response.Text, "18:25") {
		t.Fatalf("got %+v", res)
	}
}

func TestTurn_Validation(t *testing.T) {
	s, _, _ := newTestCompanion(t)
	ctx := context.Background()

	cases := []struct {
		user, msg, name string
		want            error
	}{
		{"u1", "   ", "", ErrEmptyMessage},
		{"u1", strings.Repeat("a", 201), "", ErrTooLong},
		{"", "hello", "", ErrMissingUser},
		{"u1", "hello", strings.Repeat("n", 65), ErrInvalidUserName},
	}
	for _, tc := range cases {
		if _, err := s.Turn(ctx, tc.user, tc.msg, tc.name); !errors.Is(err, tc.want) {
			t.Errorf("Turn(%q,%q) err = %v; want %v", tc.user, tc.msg, err, tc.want)
		}
	}
}

func TestTurn_ConcurrentTurnsSameUser(t *testing.T) {
	s, _, _ := newTestCompanion(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Turn(ctx, "u1", "hello", ""); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	c, _ := s.Context(ctx, "u1")
	h := c.ConversationHistory
	if len(h) != 20 {
		t.Fatalf("history = %d; want 20", len(h))
	}
	for i := 0; i < len(h); i += 2 {
		if h[i].Role != domain.RoleUser || h[i+1].Role != domain.RoleAssistant {
			t.Fatalf("turns interleaved at %d: %s/%s", i, h[i].Role, h[i+1].Role)
		}
	}
}

func TestCompanion_ContextOperations(t *testing.T) {
	s, _, _ := newTestCompanion(t)
	ctx := context.Background()

	if err := s.SetUserName(ctx, "u1", "  "); !errors.Is(err, ErrInvalidUserName) {
		t.Fatalf("blank name err = %v", err)
	}
	if err := s.SetCurrentEmotion(ctx, "u1", "elated"); !errors.Is(err, ErrUnknownEmotion) {
		t.Fatalf("unknown emotion err = %v", err)
	}
	if err := s.SetCurrentEmotion(ctx, "u1", "Grateful"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLastVisitedPage(ctx, "u1", " /duas "); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Turn(ctx, "u1", "show me the library", ""); err != nil {
		t.Fatal(err)
	}

	c, _ := s.Context(ctx, "u1")
	if *c.SessionData.CurrentEmotion != domain.EmotionGrateful || c.SessionData.LastVisitedPage != "/duas" {
		t.Fatalf("session data = %+v", c.SessionData)
	}

	msgs, _ := s.RecentMessages(ctx, "u1", 1)
	if len(msgs) != 1 || msgs[0].Role != domain.RoleAssistant {
		t.Fatalf("recent = %+v", msgs)
	}

	in, _ := s.Insights(ctx, "u1")
	if in.TotalInteractions != 1 || len(in.TopTopics) != 1 || in.TopTopics[0] != "library" {
		t.Fatalf("insights = %+v", in)
	}

	if err := s.ClearHistory(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if msgs, _ := s.RecentMessages(ctx, "u1", 10); len(msgs) != 0 {
		t.Fatalf("history not cleared: %+v", msgs)
	}

	sugg, err := s.Suggestions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, sg := range sugg {
		if sg.Priority == domain.PriorityLow && sg.Type == domain.SuggestionInsight {
			found = true
		}
	}
	if !found {
		t.Fatalf("cleared history should yield a welcome-back insight: %+v", sugg)
	}
}

func TestCompanion_Classify(t *testing.T) {
	s, repo, _ := newTestCompanion(t)
	in, err := s.Classify(context.Background(), "show me the calendar")
	if err != nil || in.Type != domain.IntentNavigation {
		t.Fatalf("got %+v, %v", in, err)
	}
	if repo.saveCount() != 0 {
		t.Fatal("Classify must not touch state")
	}
	if _, err := s.Classify(context.Background(), ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v", err)
	}
}
