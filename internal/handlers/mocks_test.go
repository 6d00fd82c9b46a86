package handlers

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockQuizService is a mock implementation of services.QuizService
type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) Create(ctx context.Context, req *services.CreateQuizRequest, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, req, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func (m *MockQuizService) GetByID(ctx context.Context, id uint, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func (m *MockQuizService) Update(ctx context.Context, id uint, req *services.UpdateQuizRequest, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, req, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func (m *MockQuizService) Delete(ctx context.Context, id uint, caller services.Caller) error {
	args := m.Called(ctx, id, caller)
	return args.Error(0)
}

func (m *MockQuizService) List(ctx context.Context, filters repositories.QuizFilters, caller services.Caller) (*services.QuizListResponse, error) {
	args := m.Called(ctx, filters, caller)
	list, _ := args.Get(0).(*services.QuizListResponse)
	return list, args.Error(1)
}

func (m *MockQuizService) ReplaceQuestions(ctx context.Context, id uint, req *services.ReplaceQuestionsRequest, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, req, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func (m *MockQuizService) AddQuestion(ctx context.Context, id uint, req *services.QuestionRequest, caller services.Caller) (*models.Question, error) {
	args := m.Called(ctx, id, req, caller)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockQuizService) UpdateQuestion(ctx context.Context, id, questionID uint, req *services.QuestionRequest, caller services.Caller) (*models.Question, error) {
	args := m.Called(ctx, id, questionID, req, caller)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockQuizService) RemoveQuestion(ctx context.Context, id, questionID uint, caller services.Caller) error {
	args := m.Called(ctx, id, questionID, caller)
	return args.Error(0)
}

func (m *MockQuizService) AssignClasses(ctx context.Context, id uint, req *services.AssignClassesRequest, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, req, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func (m *MockQuizService) Publish(ctx context.Context, id uint, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func (m *MockQuizService) Archive(ctx context.Context, id uint, caller services.Caller) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, caller)
	return quizResponse(args.Get(0)), args.Error(1)
}

func quizResponse(v interface{}) *services.QuizResponse {
	resp, _ := v.(*services.QuizResponse)
	return resp
}

// MockAttemptService is a mock implementation of services.AttemptService
type MockAttemptService struct {
	mock.Mock
}

func (m *MockAttemptService) ListAvailableQuizzes(ctx context.Context, studentID string) ([]services.AvailableQuizResponse, error) {
	args := m.Called(ctx, studentID)
	quizzes, _ := args.Get(0).([]services.AvailableQuizResponse)
	return quizzes, args.Error(1)
}

func (m *MockAttemptService) GetQuizForAttempt(ctx context.Context, studentID string, quizID uint) (*services.TakeQuizResponse, error) {
	args := m.Called(ctx, studentID, quizID)
	quiz, _ := args.Get(0).(*services.TakeQuizResponse)
	return quiz, args.Error(1)
}

func (m *MockAttemptService) SubmitAttempt(ctx context.Context, studentID string, quizID uint, req *services.SubmitAttemptRequest) (*services.AttemptSummaryResponse, error) {
	args := m.Called(ctx, studentID, quizID, req)
	summary, _ := args.Get(0).(*services.AttemptSummaryResponse)
	return summary, args.Error(1)
}

func (m *MockAttemptService) GetAttemptHistory(ctx context.Context, studentID string, quizID uint) ([]services.AttemptResponse, error) {
	args := m.Called(ctx, studentID, quizID)
	attempts, _ := args.Get(0).([]services.AttemptResponse)
	return attempts, args.Error(1)
}

func (m *MockAttemptService) ListQuizAttempts(ctx context.Context, quizID uint, caller services.Caller) ([]services.AttemptResponse, error) {
	args := m.Called(ctx, quizID, caller)
	attempts, _ := args.Get(0).([]services.AttemptResponse)
	return attempts, args.Error(1)
}

// MockClassService is a mock implementation of services.ClassService
type MockClassService struct {
	mock.Mock
}

func (m *MockClassService) Create(ctx context.Context, req *services.CreateClassRequest, caller services.Caller) (*services.ClassResponse, error) {
	args := m.Called(ctx, req, caller)
	class, _ := args.Get(0).(*services.ClassResponse)
	return class, args.Error(1)
}

func (m *MockClassService) AddMembers(ctx context.Context, classID uint, req *services.ClassMembersRequest, caller services.Caller) error {
	args := m.Called(ctx, classID, req, caller)
	return args.Error(0)
}

func (m *MockClassService) RemoveMember(ctx context.Context, classID uint, userID string, caller services.Caller) error {
	args := m.Called(ctx, classID, userID, caller)
	return args.Error(0)
}

// MockExportService is a mock implementation of services.ExportService
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportQuizResults(ctx context.Context, quizID uint, caller services.Caller) (*services.ExportResult, error) {
	args := m.Called(ctx, quizID, caller)
	result, _ := args.Get(0).(*services.ExportResult)
	return result, args.Error(1)
}

type mockServiceManager struct {
	quiz    *MockQuizService
	attempt *MockAttemptService
	class   *MockClassService
	export  *MockExportService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		quiz:    &MockQuizService{},
		attempt: &MockAttemptService{},
		class:   &MockClassService{},
		export:  &MockExportService{},
	}
}

func (m *mockServiceManager) Quiz() services.QuizService       { return m.quiz }
func (m *mockServiceManager) Attempt() services.AttemptService { return m.attempt }
func (m *mockServiceManager) Class() services.ClassService     { return m.class }
func (m *mockServiceManager) Export() services.ExportService   { return m.export }

func (m *mockServiceManager) assertExpectations(t mock.TestingT) {
	m.quiz.AssertExpectations(t)
	m.attempt.AssertExpectations(t)
	m.class.AssertExpectations(t)
	m.export.AssertExpectations(t)
}
