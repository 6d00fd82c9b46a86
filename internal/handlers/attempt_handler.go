package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AttemptHandler serves quiz taking and attempt history
type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// ListAvailableQuizzes lists the published quizzes of the student's classes
// @Summary List available quizzes
// @Tags attempts
// @Produce json
// @Success 200 {array} services.AvailableQuizResponse
// @Router /quizzes/available [get]
func (h *AttemptHandler) ListAvailableQuizzes(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	quizzes, err := h.attemptService.ListAvailableQuizzes(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// TakeQuiz returns the questions of a quiz the student may start now
// @Summary Take quiz
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.TakeQuizResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{id}/take [get]
func (h *AttemptHandler) TakeQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	quiz, err := h.attemptService.GetQuizForAttempt(c.Request.Context(), caller.UserID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// SubmitAttempt grades and records one submission
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param attempt body services.SubmitAttemptRequest true "Answers keyed by question id"
// @Success 201 {object} services.AttemptSummaryResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req services.SubmitAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "quiz_id", id)
	summary, err := h.attemptService.SubmitAttempt(c.Request.Context(), caller.UserID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// GetMyAttempts returns the student's attempts at a quiz
// @Router /quizzes/{id}/attempts/me [get]
func (h *AttemptHandler) GetMyAttempts(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.GetAttemptHistory(c.Request.Context(), caller.UserID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// ListQuizAttempts returns every attempt at a quiz for its owner
// @Router /quizzes/{id}/attempts [get]
func (h *AttemptHandler) ListQuizAttempts(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListQuizAttempts(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}
