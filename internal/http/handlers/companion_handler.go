// Companion HTTP handlers.
//
// This file exposes the conversational surface:
//   - POST   /chat/turns          (one turn: classify, record, reply)
//   - POST   /classify            (classification only, no state change)
//   - GET    /suggestions         (proactive suggestions)
//
// The per-user context routes live in context_handler.go. Handlers are
// transport-thin: they bind input, call the CompanionService and translate
// its sentinel errors via failService.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-companion/internal/domain"
	"github.com/tbourn/go-chat-companion/internal/http/middleware"
	"github.com/tbourn/go-chat-companion/internal/services"
)

// TurnScope is the idempotency scope of POST /chat/turns.
const TurnScope = "chat.turns"

//
// Service contracts (context-aware)
//

// Companion is the application service behind the handlers.
type Companion interface {
	Turn(ctx context.Context, userID, message, userName string) (*services.TurnResult, error)
	Classify(ctx context.Context, message string) (domain.Intent, error)
	Context(ctx context.Context, userID string) (domain.ConversationContext, error)
	RecentMessages(ctx context.Context, userID string, n int) ([]domain.HistoryEntry, error)
	ClearHistory(ctx context.Context, userID string) error
	SetUserName(ctx context.Context, userID, name string) error
	SetCurrentEmotion(ctx context.Context, userID, emotion string) error
	SetLastVisitedPage(ctx context.Context, userID, page string) error
	UpdateIslamicContext(ctx context.Context, userID string, patch domain.IslamicContextPatch) error
	Insights(ctx context.Context, userID string) (domain.UserInsights, error)
	Suggestions(ctx context.Context, userID string) ([]domain.ProactiveSuggestion, error)
}

// IdempotencyStore records turn responses for replay.
type IdempotencyStore interface {
	// Find returns (nil, nil) when nothing live is stored.
	Find(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error)
	Record(ctx context.Context, userID, scope, key, response string, status int, ttl time.Duration) error
}

//
// Handler wiring
//

// Handlers groups the companion endpoints.
type Handlers struct {
	svc     Companion
	idem    IdempotencyStore
	idemTTL time.Duration
	now     func() time.Time
}

// Option customises Handlers.
type Option func(*Handlers)

// WithIdempotency enables Idempotency-Key replay for turns.
func WithIdempotency(store IdempotencyStore, ttl time.Duration) Option {
	return func(h *Handlers) {
		h.idem = store
		h.idemTTL = ttl
	}
}

// WithClock overrides the idempotency clock.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

// New constructs Handlers bound to svc.
func New(svc Companion, opts ...Option) *Handlers {
	h := &Handlers{svc: svc, idemTTL: 24 * time.Hour, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h
}

// userID returns the caller id validated by middleware.UserIdentity, falling
// back to the raw header for handlers mounted without it.
func userID(c *gin.Context) string {
	if uid := middleware.UserIDFrom(c); uid != "" {
		return uid
	}
	if c.Request != nil {
		return strings.TrimSpace(c.GetHeader(middleware.HeaderUserID))
	}
	return ""
}

//
// DTOs
//

// TurnRequest is the JSON payload for one conversational turn.
type TurnRequest struct {
	// Message is the user's text.
	Message string `json:"message" example:"I feel anxious about my exams"`
	// UserName optionally records the display name before the turn.
	UserName string `json:"user_name,omitempty" example:"Zahra"`
}

// ClassifyRequest is the JSON payload for POST /classify.
type ClassifyRequest struct {
	Message string `json:"message" example:"Where can I find the prayer times?"`
}

// SuggestionsResponse wraps proactive suggestions, highest priority first.
type SuggestionsResponse struct {
	Suggestions []domain.ProactiveSuggestion `json:"suggestions"`
}

//
// Handlers
//

// PostTurn godoc
// @ID          postTurn
// @Summary     Send a message and get the companion's reply
// @Description Classifies the message, records it in the caller's context and returns the generated reply.
// @Description Supports idempotency via the Idempotency-Key header (same key → same response).
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "Caller id"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.TurnRequest  true  "Turn payload"
//
// @Success     200  {object}  services.TurnResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/turns [post]
func (h *Handlers) PostTurn(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	if key != "" && h.idem != nil {
		if rec, err := h.idem.Find(ctx, uid, TurnScope, key, h.now().UTC()); err == nil && rec != nil {
			middleware.MarkReplayed(c, TurnScope)
			c.Data(rec.Status, "application/json; charset=utf-8", []byte(rec.Response))
			return
		}
	}

	res, err := h.svc.Turn(ctx, uid, req.Message, req.UserName)
	if err != nil {
		failService(c, err)
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeTurnFailed, err.Error())
		return
	}
	if key != "" && h.idem != nil {
		if err := h.idem.Record(ctx, uid, TurnScope, key, string(body), http.StatusOK, h.idemTTL); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Classify godoc
// @ID          classify
// @Summary     Classify a message
// @Description Returns the detected intent without touching any conversation state.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ClassifyRequest  true  "Message"
// @Success     200   {object}  domain.Intent
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Router      /classify [post]
func (h *Handlers) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	intent, err := h.svc.Classify(c.Request.Context(), req.Message)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, intent)
}

// Suggestions godoc
// @ID          listSuggestions
// @Summary     Proactive suggestions
// @Description Time and context driven suggestions for the caller, ordered high → low priority.
// @Tags        Suggestions
// @Produce     json
// @Param       X-User-ID  header    string  true  "Caller id"
// @Success     200        {object}  handlers.SuggestionsResponse
// @Failure     400        {object}  handlers.ErrorResponse  "Bad request"
// @Router      /suggestions [get]
func (h *Handlers) Suggestions(c *gin.Context) {
	list, err := h.svc.Suggestions(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	if list == nil {
		list = []domain.ProactiveSuggestion{}
	}
	ok(c, http.StatusOK, SuggestionsResponse{Suggestions: list})
}
