package nlu

import (
	"regexp"
	"strings"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// term is a trigger word matched on word boundaries, tolerating a plural
// suffix ("duas", "imams", "prayers").
type term struct {
	word string
	re   *regexp.Regexp
}

func newTerm(w string) term {
	return term{
		word: w,
		re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `(?:s|es)?\b`),
	}
}

func terms(words ...string) []term {
	out := make([]term, 0, len(words))
	for _, w := range words {
		out = append(out, newTerm(w))
	}
	return out
}

// matchTerms returns the words of ts present in lower, in table order,
// without duplicates.
func matchTerms(lower string, ts []term) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		if _, dup := seen[t.word]; dup {
			continue
		}
		if t.re.MatchString(lower) {
			seen[t.word] = struct{}{}
			out = append(out, t.word)
		}
	}
	return out
}

func anyMatch(s string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// feel builds the "i am / feeling (very) <word>" pattern for an emotion.
func feel(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:i am|i'm|im|i feel|feeling|feel|felt|so)\s+(?:so\s+|very\s+|really\s+|a bit\s+|quite\s+|extremely\s+)?(?:` +
		strings.Join(words, "|") + `)\b`)
}

// emotionRule is one emotion category: its regex patterns (strong signal)
// and its keyword list (fallback signal).
type emotionRule struct {
	emotion  domain.Emotion
	patterns []*regexp.Regexp
	keywords []term
}

// defaultEmotionRules follows domain.Emotions order.
func defaultEmotionRules() []emotionRule {
	return []emotionRule{
		{
			emotion: domain.EmotionHappy,
			patterns: []*regexp.Regexp{
				feel("happy", "joyful", "excited", "glad", "delighted", "cheerful"),
				regexp.MustCompile(`\b(?:best day|great news|so much joy)\b`),
			},
			keywords: terms("happy", "joy", "joyful", "excited", "glad", "delighted", "cheerful"),
		},
		{
			emotion: domain.EmotionSad,
			patterns: []*regexp.Regexp{
				feel("sad", "depressed", "unhappy", "lonely", "heartbroken", "miserable", "hopeless", "down"),
				regexp.MustCompile(`\b(?:passed away|grieving|can'?t stop crying|lost my (?:mother|father|mom|dad|friend|brother|sister|child))\b`),
			},
			keywords: terms("sad", "depressed", "unhappy", "lonely", "heartbroken", "grief", "crying", "miserable", "hopeless", "upset", "hurt"),
		},
		{
			emotion: domain.EmotionAnxious,
			patterns: []*regexp.Regexp{
				feel("anxious", "nervous", "stressed", "overwhelmed", "restless", "tense"),
				regexp.MustCompile(`\b(?:anxiety|panic attack|stressed out|can'?t relax)\b`),
			},
			keywords: terms("anxious", "anxiety", "nervous", "stress", "stressed", "panic", "overwhelmed", "restless"),
		},
		{
			emotion: domain.EmotionGrateful,
			patterns: []*regexp.Regexp{
				feel("grateful", "thankful", "blessed"),
				regexp.MustCompile(`\b(?:alhamdulillah|thank (?:you|god|allah))\b`),
			},
			keywords: terms("grateful", "thankful", "gratitude", "alhamdulillah", "thanks"),
		},
		{
			emotion: domain.EmotionAngry,
			patterns: []*regexp.Regexp{
				feel("angry", "furious", "frustrated", "annoyed", "irritated", "mad"),
				regexp.MustCompile(`\b(?:so angry|losing my temper|fed up)\b`),
			},
			keywords: terms("angry", "anger", "furious", "frustrated", "annoyed", "irritated", "rage"),
		},
		{
			emotion: domain.EmotionConfused,
			patterns: []*regexp.Regexp{
				feel("confused", "lost", "unsure", "uncertain", "puzzled"),
				regexp.MustCompile(`\bi (?:don'?t|do not) understand\b`),
			},
			keywords: terms("confused", "confusing", "unsure", "uncertain", "doubt", "puzzled"),
		},
		{
			emotion: domain.EmotionPeaceful,
			patterns: []*regexp.Regexp{
				feel("peaceful", "calm", "serene", "relaxed", "tranquil", "at peace"),
				regexp.MustCompile(`\b(?:inner peace|at ease)\b`),
			},
			keywords: terms("peaceful", "calm", "serene", "tranquil", "relaxed", "peace"),
		},
		{
			emotion: domain.EmotionWorried,
			patterns: []*regexp.Regexp{
				feel("worried", "afraid", "scared", "concerned", "fearful"),
				regexp.MustCompile(`\b(?:i'?m worried about|what if something|afraid (?:of|that))\b`),
			},
			keywords: terms("worried", "worry", "afraid", "scared", "fear", "concerned"),
		},
	}
}

var (
	navigationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:go to|take me to|bring me to|navigate to|show me|open|visit)\b`),
		regexp.MustCompile(`\bwhere (?:is|are|can i find)\b`),
		regexp.MustCompile(`\b(?:calendar|dashboard|library|home) (?:page|section|screen)\b`),
	}
	navigationTerms = terms("calendar", "ziyarat", "prayer", "dua", "dashboard", "home", "library", "imam")

	prayerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:fajr|dhuhr|zuhr|asr|maghrib|isha|salat|salah|namaz)\b`),
		regexp.MustCompile(`\bprayer times?\b`),
		regexp.MustCompile(`\b(?:pray|praying|recite|reciting|supplicat\w*)\b`),
		regexp.MustCompile(`\b(?:dhikr|tasbih)\b`),
	}
	prayerTerms = terms("fajr", "dhuhr", "asr", "maghrib", "isha", "salat", "namaz", "dua", "ziyarat", "dhikr")

	recommendationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:recommend\w*|suggest\w*|advice|advise|any tips|guide me)\b`),
		regexp.MustCompile(`\bwhat should i (?:do|read|recite|listen)\b`),
	}

	questionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?:what|who|when|where|why|how|which|whose|is|are|can|could|do|does|should|will|would)\b`),
		regexp.MustCompile(`\?\s*$`),
	}
)
