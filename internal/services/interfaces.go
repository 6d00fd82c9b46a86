package services

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
)

// Caller is the authenticated user an operation runs on behalf of
type Caller struct {
	UserID string
	Role   models.UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// ===== QUIZ CATALOG =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, caller Caller) (*QuizResponse, error)
	GetByID(ctx context.Context, id uint, caller Caller) (*QuizResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, caller Caller) (*QuizResponse, error)
	Delete(ctx context.Context, id uint, caller Caller) error
	List(ctx context.Context, filters repositories.QuizFilters, caller Caller) (*QuizListResponse, error)

	// Question set; every change recomputes total points in the same transaction
	ReplaceQuestions(ctx context.Context, id uint, req *ReplaceQuestionsRequest, caller Caller) (*QuizResponse, error)
	AddQuestion(ctx context.Context, id uint, req *QuestionRequest, caller Caller) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id, questionID uint, req *QuestionRequest, caller Caller) (*models.Question, error)
	RemoveQuestion(ctx context.Context, id, questionID uint, caller Caller) error

	AssignClasses(ctx context.Context, id uint, req *AssignClassesRequest, caller Caller) (*QuizResponse, error)
	Publish(ctx context.Context, id uint, caller Caller) (*QuizResponse, error)
	Archive(ctx context.Context, id uint, caller Caller) (*QuizResponse, error)
}

// ===== ATTEMPTS =====

type AttemptService interface {
	ListAvailableQuizzes(ctx context.Context, studentID string) ([]AvailableQuizResponse, error)
	GetQuizForAttempt(ctx context.Context, studentID string, quizID uint) (*TakeQuizResponse, error)
	SubmitAttempt(ctx context.Context, studentID string, quizID uint, req *SubmitAttemptRequest) (*AttemptSummaryResponse, error)
	GetAttemptHistory(ctx context.Context, studentID string, quizID uint) ([]AttemptResponse, error)
	ListQuizAttempts(ctx context.Context, quizID uint, caller Caller) ([]AttemptResponse, error)
}

// ===== CLASSES =====

type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, caller Caller) (*ClassResponse, error)
	AddMembers(ctx context.Context, classID uint, req *ClassMembersRequest, caller Caller) error
	RemoveMember(ctx context.Context, classID uint, userID string, caller Caller) error
}

// ClassDirectory answers which classes a user belongs to
type ClassDirectory interface {
	ClassIDsForUser(ctx context.Context, userID string) ([]uint, error)
	Invalidate(ctx context.Context, userIDs ...string)
}

// ===== EXPORT =====

type ExportService interface {
	ExportQuizResults(ctx context.Context, quizID uint, caller Caller) (*ExportResult, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Quiz() QuizService
	Attempt() AttemptService
	Class() ClassService
	Export() ExportService
}
