// Package domain defines the shared types of the companion pipeline: the
// per-turn Intent and BotResponse values, the per-session
// ConversationContext, proactive suggestions, and the GORM models used by
// the storage collaborators.
package domain

import "strings"

// IntentType is the primary purpose of a user utterance. Exactly one type is
// assigned per Intent.
type IntentType string

const (
	IntentNavigation     IntentType = "navigation"
	IntentQuestion       IntentType = "question"
	IntentEmotion        IntentType = "emotion"
	IntentPrayer         IntentType = "prayer"
	IntentRecommendation IntentType = "recommendation"
	IntentGeneral        IntentType = "general"
)

// IntentTypes lists every IntentType.
var IntentTypes = []IntentType{
	IntentNavigation,
	IntentQuestion,
	IntentEmotion,
	IntentPrayer,
	IntentRecommendation,
	IntentGeneral,
}

// Valid reports whether t is one of the known intent types.
func (t IntentType) Valid() bool {
	for _, k := range IntentTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Emotion is the affect detected in an emotion-typed utterance.
type Emotion string

const (
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionAnxious  Emotion = "anxious"
	EmotionGrateful Emotion = "grateful"
	EmotionAngry    Emotion = "angry"
	EmotionConfused Emotion = "confused"
	EmotionPeaceful Emotion = "peaceful"
	EmotionWorried  Emotion = "worried"
)

// Emotions is the fixed evaluation order used by the classifier. The first
// matching category wins, so the order is part of the contract.
var Emotions = []Emotion{
	EmotionHappy,
	EmotionSad,
	EmotionAnxious,
	EmotionGrateful,
	EmotionAngry,
	EmotionConfused,
	EmotionPeaceful,
	EmotionWorried,
}

// ParseEmotion returns the Emotion named by s (case-insensitive), or false
// when s is unknown.
func ParseEmotion(s string) (Emotion, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range Emotions {
		if string(e) == s {
			return e, true
		}
	}
	return "", false
}

// EntityKind tags an extracted span.
type EntityKind string

const (
	EntityPlace  EntityKind = "place"
	EntityPerson EntityKind = "person"
	EntityTopic  EntityKind = "topic"
)

// Entity is a named span pulled from the original utterance.
type Entity struct {
	Text string     `json:"text"`
	Kind EntityKind `json:"kind"`
}

// Intent is the structured classification of one utterance. It lives for a
// single turn.
//
// Emotion is non-nil if and only if Type == IntentEmotion.
type Intent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Emotion    *Emotion   `json:"emotion,omitempty"`
	Entities   []Entity   `json:"entities"`
	Keywords   []string   `json:"keywords"`
}

// Clone returns a deep copy of the intent.
func (i Intent) Clone() Intent {
	out := i
	if i.Emotion != nil {
		e := *i.Emotion
		out.Emotion = &e
	}
	out.Entities = append([]Entity(nil), i.Entities...)
	out.Keywords = append([]string(nil), i.Keywords...)
	return out
}
