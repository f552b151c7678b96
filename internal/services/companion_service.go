// Package services – CompanionService
//
// CompanionService runs one conversational turn end to end: validate the
// message, classify it, record it, generate the reply from the user's
// situational context, and record the reply. It also exposes the context
// operations the HTTP and CLI surfaces need, with input validation.
//
// Observability: public methods are OpenTelemetry-instrumented and each
// classified turn increments assistant_intents_total.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-chat-companion/internal/domain"
	"github.com/tbourn/go-chat-companion/internal/nlu"
	"github.com/tbourn/go-chat-companion/internal/responder"
)

const maxUserNameRunes = 64

// TurnResult is the outcome of one turn.
type TurnResult struct {
	Intent   domain.Intent      `json:"intent"`
	Response domain.BotResponse `json:"response"`
}

// CompanionService wires the pipeline components together.
type CompanionService struct {
	Classifier *nlu.Classifier
	Generator  *responder.Generator
	Suggester  *Suggester
	Managers   *ManagerRegistry

	// MaxMessageRunes caps accepted messages; 0 disables the check.
	MaxMessageRunes int
}

// NewCompanionService returns a service with production defaults for any
// pipeline component the caller does not need to customise.
func NewCompanionService(managers *ManagerRegistry, maxRunes int) *CompanionService {
	return &CompanionService{
		Classifier:      nlu.NewClassifier(),
		Generator:       responder.NewGenerator(),
		Suggester:       NewSuggester(),
		Managers:        managers,
		MaxMessageRunes: maxRunes,
	}
}

func tracer() trace.Tracer { return otel.Tracer("services/CompanionService") }

func (s *CompanionService) validate(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(msg) > s.MaxMessageRunes {
		return "", ErrTooLong
	}
	return msg, nil
}

func (s *CompanionService) manager(ctx context.Context, userID string) (*ContextManager, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	return s.Managers.Get(ctx, userID), nil
}

// Turn processes one user message. userName, when non-empty and different
// from the stored one, is recorded first.
func (s *CompanionService) Turn(ctx context.Context, userID, message, userName string) (*TurnResult, error) {
	ctx, span := tracer().Start(ctx, "Turn", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	msg, err := s.validate(message)
	if err != nil {
		return nil, err
	}
	m, err := s.manager(ctx, userID)
	if err != nil {
		return nil, err
	}
	userName = strings.TrimSpace(userName)
	if utf8.RuneCountInString(userName) > maxUserNameRunes {
		return nil, ErrInvalidUserName
	}

	var res TurnResult
	m.Exclusive(func() {
		if userName != "" && userName != m.Context().UserName {
			m.SetUserName(ctx, userName)
		}

		intent := s.Classifier.Classify(msg)
		emotion := ""
		if intent.Emotion != nil {
			emotion = string(*intent.Emotion)
		}
		intentsTotal.WithLabelValues(string(intent.Type), emotion).Inc()
		span.SetAttributes(
			attribute.String("intent.type", string(intent.Type)),
			attribute.Float64("intent.confidence", intent.Confidence),
		)

		m.AddMessage(ctx, domain.RoleUser, msg, &intent)
		if intent.Emotion != nil {
			m.SetCurrentEmotion(ctx, *intent.Emotion)
		}

		resp := s.Generator.Generate(intent, msg, m.SituationalContext())
		m.AddMessage(ctx, domain.RoleAssistant, resp.Text, nil)

		res = TurnResult{Intent: intent, Response: resp}
	})
	return &res, nil
}

// Classify runs only the classifier.
func (s *CompanionService) Classify(ctx context.Context, message string) (domain.Intent, error) {
	_, span := tracer().Start(ctx, "Classify")
	defer span.End()

	msg, err := s.validate(message)
	if err != nil {
		return domain.Intent{}, err
	}
	return s.Classifier.Classify(msg), nil
}

// Context returns the user's context snapshot.
func (s *CompanionService) Context(ctx context.Context, userID string) (domain.ConversationContext, error) {
	m, err := s.manager(ctx, userID)
	if err != nil {
		return domain.ConversationContext{}, err
	}
	return m.Context(), nil
}

// RecentMessages returns up to n recent history entries.
func (s *CompanionService) RecentMessages(ctx context.Context, userID string, n int) ([]domain.HistoryEntry, error) {
	m, err := s.manager(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.RecentMessages(n), nil
}

// ClearHistory empties the user's history.
func (s *CompanionService) ClearHistory(ctx context.Context, userID string) error {
	ctx, span := tracer().Start(ctx, "ClearHistory", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	m, err := s.manager(ctx, userID)
	if err != nil {
		return err
	}
	m.Exclusive(func() { m.ClearHistory(ctx) })
	return nil
}

// SetUserName validates and records the display name.
func (s *CompanionService) SetUserName(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxUserNameRunes {
		return ErrInvalidUserName
	}
	m, err := s.manager(ctx, userID)
	if err != nil {
		return err
	}
	m.Exclusive(func() { m.SetUserName(ctx, name) })
	return nil
}

// SetCurrentEmotion validates and records the current emotion.
func (s *CompanionService) SetCurrentEmotion(ctx context.Context, userID, emotion string) error {
	e, ok := domain.ParseEmotion(emotion)
	if !ok {
		return ErrUnknownEmotion
	}
	m, err := s.manager(ctx, userID)
	if err != nil {
		return err
	}
	m.Exclusive(func() { m.SetCurrentEmotion(ctx, e) })
	return nil
}

// SetLastVisitedPage records the user's current page.
func (s *CompanionService) SetLastVisitedPage(ctx context.Context, userID, page string) error {
	m, err := s.manager(ctx, userID)
	if err != nil {
		return err
	}
	m.Exclusive(func() { m.SetLastVisitedPage(ctx, strings.TrimSpace(page)) })
	return nil
}

// UpdateIslamicContext applies patch to the user's Islamic context.
func (s *CompanionService) UpdateIslamicContext(ctx context.Context, userID string, patch domain.IslamicContextPatch) error {
	m, err := s.manager(ctx, userID)
	if err != nil {
		return err
	}
	m.Exclusive(func() { m.UpdateIslamicContext(ctx, patch) })
	return nil
}

// Insights returns the aggregated insights for the user.
func (s *CompanionService) Insights(ctx context.Context, userID string) (domain.UserInsights, error) {
	m, err := s.manager(ctx, userID)
	if err != nil {
		return domain.UserInsights{}, err
	}
	return m.UserInsights(), nil
}

// Suggestions returns proactive suggestions for the user.
func (s *CompanionService) Suggestions(ctx context.Context, userID string) ([]domain.ProactiveSuggestion, error) {
	_, span := tracer().Start(ctx, "Suggestions", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	m, err := s.manager(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Suggester.Suggest(m.Context()), nil
}
