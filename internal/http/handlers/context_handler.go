// Context HTTP handlers.
//
// Read and adjust the caller's ConversationContext:
//   - GET    /context
//   - GET    /context/messages?limit=n
//   - DELETE /context/messages
//   - PUT    /context/user-name
//   - PUT    /context/emotion
//   - PUT    /context/page
//   - PATCH  /context/islamic
//   - GET    /context/insights
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-companion/internal/domain"
	"github.com/tbourn/go-chat-companion/internal/utils"
)

const (
	defaultMessageLimit = 10
	maxMessageLimit     = 100
)

// MessagesResponse holds the most recent history entries, oldest first.
type MessagesResponse struct {
	Messages []domain.HistoryEntry `json:"messages"`
}

// UserNameRequest sets the display name.
type UserNameRequest struct {
	UserName string `json:"user_name" binding:"required" example:"Zahra"`
}

// EmotionRequest sets the current emotion.
type EmotionRequest struct {
	Emotion string `json:"emotion" binding:"required" example:"grateful"`
}

// PageRequest records the page the user is on.
type PageRequest struct {
	Page string `json:"page" binding:"required" example:"/duas"`
}

// clampLimit parses ?limit with a default of 10, bounded to [1, 100].
func clampLimit(c *gin.Context) int {
	return utils.LimitParam(c.Query("limit"), defaultMessageLimit, maxMessageLimit)
}

// GetContext godoc
// @ID          getContext
// @Summary     Get the caller's conversation context
// @Tags        Context
// @Produce     json
// @Param       X-User-ID  header    string  true  "Caller id"
// @Success     200        {object}  domain.ConversationContext
// @Failure     400        {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context [get]
func (h *Handlers) GetContext(c *gin.Context) {
	cc, err := h.svc.Context(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, cc)
}

// ListMessages godoc
// @ID          listContextMessages
// @Summary     Recent conversation history
// @Tags        Context
// @Produce     json
// @Param       X-User-ID  header    string  true   "Caller id"
// @Param       limit      query     int     false  "Entries to return"  minimum(1) maximum(100) default(10)
// @Success     200        {object}  handlers.MessagesResponse
// @Failure     400        {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	msgs, err := h.svc.RecentMessages(c.Request.Context(), userID(c), clampLimit(c))
	if err != nil {
		failService(c, err)
		return
	}
	if msgs == nil {
		msgs = []domain.HistoryEntry{}
	}
	ok(c, http.StatusOK, MessagesResponse{Messages: msgs})
}

// ClearMessages godoc
// @ID          clearContextMessages
// @Summary     Clear conversation history
// @Description Empties the history and resets the interaction count; preferences are kept.
// @Tags        Context
// @Param       X-User-ID  header  string  true  "Caller id"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/messages [delete]
func (h *Handlers) ClearMessages(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context(), userID(c)); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// PutUserName godoc
// @ID          putUserName
// @Summary     Set the display name
// @Tags        Context
// @Accept      json
// @Param       X-User-ID  header  string                    true  "Caller id"
// @Param       body       body    handlers.UserNameRequest  true  "Name"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/user-name [put]
func (h *Handlers) PutUserName(c *gin.Context) {
	var req UserNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidUserName, "user_name required")
		return
	}
	if err := h.svc.SetUserName(c.Request.Context(), userID(c), req.UserName); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// PutEmotion godoc
// @ID          putEmotion
// @Summary     Set the current emotion
// @Description One of happy, sad, anxious, grateful, angry, confused, peaceful, worried.
// @Tags        Context
// @Accept      json
// @Param       X-User-ID  header  string                   true  "Caller id"
// @Param       body       body    handlers.EmotionRequest  true  "Emotion"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/emotion [put]
func (h *Handlers) PutEmotion(c *gin.Context) {
	var req EmotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeUnknownEmotion, "emotion required")
		return
	}
	if err := h.svc.SetCurrentEmotion(c.Request.Context(), userID(c), req.Emotion); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// PutPage godoc
// @ID          putPage
// @Summary     Record the last visited page
// @Tags        Context
// @Accept      json
// @Param       X-User-ID  header  string                true  "Caller id"
// @Param       body       body    handlers.PageRequest  true  "Page"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/page [put]
func (h *Handlers) PutPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "page required")
		return
	}
	if err := h.svc.SetLastVisitedPage(c.Request.Context(), userID(c), req.Page); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// PatchIslamic godoc
// @ID          patchIslamicContext
// @Summary     Merge calendar and prayer data into the context
// @Description Only the fields present in the body are replaced.
// @Tags        Context
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header    string                      true  "Caller id"
// @Param       body       body      domain.IslamicContextPatch  true  "Partial Islamic context"
// @Success     200        {object}  domain.IslamicContext
// @Failure     400        {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/islamic [patch]
func (h *Handlers) PatchIslamic(c *gin.Context) {
	var patch domain.IslamicContextPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()
	uid := userID(c)
	if err := h.svc.UpdateIslamicContext(ctx, uid, patch); err != nil {
		failService(c, err)
		return
	}
	cc, err := h.svc.Context(ctx, uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, cc.IslamicContext)
}

// GetInsights godoc
// @ID          getInsights
// @Summary     Aggregated user insights
// @Tags        Context
// @Produce     json
// @Param       X-User-ID  header    string  true  "Caller id"
// @Success     200        {object}  domain.UserInsights
// @Failure     400        {object}  handlers.ErrorResponse  "Bad request"
// @Router      /context/insights [get]
func (h *Handlers) GetInsights(c *gin.Context) {
	in, err := h.svc.Insights(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, in)
}
