package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// QuizHandler serves the instructor side of the catalog
type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(quizService services.QuizService, exportService services.ExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a new draft quiz
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} services.QuizResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req services.CreateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes lists the caller's own quizzes
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param status query string false "Draft, Published or Archived"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.QuizListResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.List(c.Request.Context(), h.parseQuizFilters(c), caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

// GetQuiz returns a quiz with its questions and answer keys
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.QuizResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	h.withQuiz(c, func(id uint, caller services.Caller) (interface{}, error) {
		return h.quizService.GetByID(c.Request.Context(), id, caller)
	})
}

// UpdateQuiz changes a quiz's title and settings
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req services.UpdateQuizRequest
	h.withQuizBody(c, &req, func(id uint, caller services.Caller) (interface{}, error) {
		return h.quizService.Update(c.Request.Context(), id, &req, caller)
	})
}

// DeleteQuiz removes a draft quiz that has never been attempted
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)
	if err := h.quizService.Delete(c.Request.Context(), id, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== QUESTION SET =====

// ReplaceQuestions swaps the whole question set
// @Router /quizzes/{id}/questions [put]
func (h *QuizHandler) ReplaceQuestions(c *gin.Context) {
	var req services.ReplaceQuestionsRequest
	h.withQuizBody(c, &req, func(id uint, caller services.Caller) (interface{}, error) {
		return h.quizService.ReplaceQuestions(c.Request.Context(), id, &req, caller)
	})
}

// AddQuestion appends one question
// @Router /quizzes/{id}/questions [post]
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion replaces one question in place
// @Router /quizzes/{id}/questions/{question_id} [put]
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req services.QuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.quizService.UpdateQuestion(c.Request.Context(), id, questionID, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// RemoveQuestion deletes one question
// @Router /quizzes/{id}/questions/{question_id} [delete]
func (h *QuizHandler) RemoveQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.quizService.RemoveQuestion(c.Request.Context(), id, questionID, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== CLASSES AND LIFECYCLE =====

// AssignClasses sets the classes that can see the quiz
// @Router /quizzes/{id}/classes [put]
func (h *QuizHandler) AssignClasses(c *gin.Context) {
	var req services.AssignClassesRequest
	h.withQuizBody(c, &req, func(id uint, caller services.Caller) (interface{}, error) {
		return h.quizService.AssignClasses(c.Request.Context(), id, &req, caller)
	})
}

// PublishQuiz moves a draft to published
// @Router /quizzes/{id}/publish [post]
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	h.withQuiz(c, func(id uint, caller services.Caller) (interface{}, error) {
		return h.quizService.Publish(c.Request.Context(), id, caller)
	})
}

// ArchiveQuiz moves a published quiz to archived
// @Router /quizzes/{id}/archive [post]
func (h *QuizHandler) ArchiveQuiz(c *gin.Context) {
	h.withQuiz(c, func(id uint, caller services.Caller) (interface{}, error) {
		return h.quizService.Archive(c.Request.Context(), id, caller)
	})
}

// ExportResults streams an xlsx workbook of every attempt
// @Summary Export quiz results
// @Tags quizzes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Quiz ID"
// @Router /quizzes/{id}/results/export [get]
func (h *QuizHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", id)
	result, err := h.exportService.ExportQuizResults(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ===== HELPERS =====

func (h *QuizHandler) withQuiz(c *gin.Context, run func(id uint, caller services.Caller) (interface{}, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	result, err := run(id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) withQuizBody(c *gin.Context, req interface{}, run func(id uint, caller services.Caller) (interface{}, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	if !h.bindJSON(c, req) {
		return
	}

	result, err := run(id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) parseQuizFilters(c *gin.Context) repositories.QuizFilters {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}

	filters := repositories.QuizFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		quizStatus := models.QuizStatus(status)
		filters.Status = &quizStatus
	}
	return filters
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}
