package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/store"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type QueryHandler struct {
	sessions *store.SessionStore
	answer   *app.AnswerService
}

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

func NewQueryHandler(sessions *store.SessionStore, answer *app.AnswerService) *QueryHandler {
	return &QueryHandler{sessions: sessions, answer: answer}
}

// Ask answers a question grounded in the caller's session documents.
// A caller with no session gets the fixed no-documents answer.
func (h *QueryHandler) Ask(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no query provided")
		return
	}

	sessionID := middleware.SessionID(c)
	h.sessions.Refresh(sessionID)

	answer, err := h.answer.Answer(c.Request.Context(), sessionID, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrShuttingDown):
			response.Error(c, http.StatusServiceUnavailable, response.CodeShuttingDown, "service is shutting down")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no query provided")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query failed")
		}
		return
	}
	response.OK(c, gin.H{"answer": answer})
}
