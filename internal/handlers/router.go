package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/auth"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	attemptHandler *AttemptHandler
	classHandler   *ClassHandler
	logger         utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), logger),
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), logger),
		classHandler:   NewClassHandler(serviceManager.Class(), logger),
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes. authenticate must store the caller's
// id and role under the auth context keys.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authenticate gin.HandlerFunc) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(utils.RequestID(), utils.LoggerMiddleware(hm.logger), authenticate)

	student := auth.RequireRoles(models.RoleStudent)
	staff := auth.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	quizzes := v1.Group("/quizzes")
	{
		// Student routes
		quizzes.GET("/available", student, hm.attemptHandler.ListAvailableQuizzes)
		quizzes.GET("/:id/take", student, hm.attemptHandler.TakeQuiz)
		quizzes.POST("/:id/attempts", student, hm.attemptHandler.SubmitAttempt)
		quizzes.GET("/:id/attempts/me", student, hm.attemptHandler.GetMyAttempts)

		// Authoring routes
		quizzes.POST("", staff, hm.quizHandler.CreateQuiz)
		quizzes.GET("", staff, hm.quizHandler.ListQuizzes)
		quizzes.GET("/:id", staff, hm.quizHandler.GetQuiz)
		quizzes.PUT("/:id", staff, hm.quizHandler.UpdateQuiz)
		quizzes.DELETE("/:id", staff, hm.quizHandler.DeleteQuiz)

		quizzes.PUT("/:id/questions", staff, hm.quizHandler.ReplaceQuestions)
		quizzes.POST("/:id/questions", staff, hm.quizHandler.AddQuestion)
		quizzes.PUT("/:id/questions/:question_id", staff, hm.quizHandler.UpdateQuestion)
		quizzes.DELETE("/:id/questions/:question_id", staff, hm.quizHandler.RemoveQuestion)

		quizzes.PUT("/:id/classes", staff, hm.quizHandler.AssignClasses)
		quizzes.POST("/:id/publish", staff, hm.quizHandler.PublishQuiz)
		quizzes.POST("/:id/archive", staff, hm.quizHandler.ArchiveQuiz)

		quizzes.GET("/:id/attempts", staff, hm.attemptHandler.ListQuizAttempts)
		quizzes.GET("/:id/results/export", staff, hm.quizHandler.ExportResults)
	}

	classes := v1.Group("/classes", staff)
	{
		classes.POST("", hm.classHandler.CreateClass)
		classes.POST("/:id/members", hm.classHandler.AddMembers)
		classes.DELETE("/:id/members/:user_id", hm.classHandler.RemoveMember)
	}
}

// HealthCheck reports liveness without touching dependencies
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-assessment-service",
	})
}
