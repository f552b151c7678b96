// Package nlu implements the rule-based intent classifier: a fixed,
// priority-ordered cascade of pattern stages that maps free text to a
// domain.Intent. The first stage that matches wins.
//
// Stage order (and base confidence):
//
//	emotion regex        0.90
//	emotion keywords     0.70 + 0.10 per hit (clamped to 1.0)
//	navigation           0.85
//	prayer               0.85
//	recommendation       0.80
//	question             0.70
//	general              0.50
//
// Classification is pure: no I/O, no shared mutable state. A Classifier is
// safe for concurrent use.
package nlu

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// Confidence scores per stage.
const (
	ConfidenceEmotionPattern = 0.9
	ConfidenceEmotionKeyword = 0.7
	ConfidencePerKeyword     = 0.1
	ConfidenceNavigation     = 0.85
	ConfidencePrayer         = 0.85
	ConfidenceRecommendation = 0.8
	ConfidenceQuestion       = 0.7
	ConfidenceGeneral        = 0.5
)

// Classifier maps utterances to intents.
type Classifier struct {
	emotions []emotionRule
}

// NewClassifier returns a Classifier loaded with the default rule tables.
func NewClassifier() *Classifier {
	return &Classifier{emotions: defaultEmotionRules()}
}

// Classify returns the Intent for utterance. It never fails: input that
// matches nothing degrades to IntentGeneral with ConfidenceGeneral.
func (c *Classifier) Classify(utterance string) domain.Intent {
	text := norm.NFKC.String(utterance)
	lower := strings.ToLower(strings.TrimSpace(text))

	in := domain.Intent{
		Entities: ExtractEntities(text),
		Keywords: []string{},
	}

	if c.emotionStage(lower, &in) {
		return in
	}

	switch {
	case anyMatch(lower, navigationPatterns):
		in.Type = domain.IntentNavigation
		in.Confidence = ConfidenceNavigation
		in.Keywords = matchTerms(lower, navigationTerms)
	case anyMatch(lower, prayerPatterns):
		in.Type = domain.IntentPrayer
		in.Confidence = ConfidencePrayer
		in.Keywords = matchTerms(lower, prayerTerms)
	case anyMatch(lower, recommendationPatterns):
		in.Type = domain.IntentRecommendation
		in.Confidence = ConfidenceRecommendation
	case anyMatch(lower, questionPatterns):
		in.Type = domain.IntentQuestion
		in.Confidence = ConfidenceQuestion
	default:
		in.Type = domain.IntentGeneral
		in.Confidence = ConfidenceGeneral
	}
	return in
}

// emotionStage runs the regex pass across all categories, then the keyword
// pass. It fills in and reports true on the first category that matches.
func (c *Classifier) emotionStage(lower string, in *domain.Intent) bool {
	for _, r := range c.emotions {
		if anyMatch(lower, r.patterns) {
			setEmotion(in, r.emotion, ConfidenceEmotionPattern, matchTerms(lower, r.keywords))
			return true
		}
	}
	for _, r := range c.emotions {
		if hits := matchTerms(lower, r.keywords); len(hits) > 0 {
			score := ConfidenceEmotionKeyword + ConfidencePerKeyword*float64(len(hits))
			setEmotion(in, r.emotion, clamp01(score), hits)
			return true
		}
	}
	return false
}

func setEmotion(in *domain.Intent, e domain.Emotion, confidence float64, keywords []string) {
	in.Type = domain.IntentEmotion
	in.Emotion = &e
	in.Confidence = confidence
	in.Keywords = keywords
}

// clamp01 bounds v to [0,1] and rounds to two decimals so that the
// additive keyword score does not carry float noise (0.7+0.1 → 0.8).
func clamp01(v float64) float64 {
	v = math.Round(v*100) / 100
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
