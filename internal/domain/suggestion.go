package domain

// SuggestionType classifies a proactive suggestion.
type SuggestionType string

const (
	SuggestionReminder       SuggestionType = "reminder"
	SuggestionRecommendation SuggestionType = "recommendation"
	SuggestionInsight        SuggestionType = "insight"
	SuggestionCelebration    SuggestionType = "celebration"
)

// Priority orders suggestions for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a sort weight; higher ranks are shown first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ProactiveSuggestion is an unsolicited prompt derived from the context.
type ProactiveSuggestion struct {
	Type     SuggestionType `json:"type"`
	Priority Priority       `json:"priority"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Icon     string         `json:"icon"`
	Action   *Action        `json:"action,omitempty"`
}
