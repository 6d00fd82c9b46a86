package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/validator"
	"github.com/stretchr/testify/require"
)

var (
	instructor      = Caller{UserID: "inst-1", Role: models.RoleInstructor}
	otherInstructor = Caller{UserID: "inst-2", Role: models.RoleInstructor}
	admin           = Caller{UserID: "admin-1", Role: models.RoleAdmin}
	studentCaller   = Caller{UserID: "stu-1", Role: models.RoleStudent}
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	repo       *memoryRepository
	dispatcher *recordingDispatcher
	cache      *memoryCache
	directory  ClassDirectory

	quizzes  *quizService
	attempts *attemptService
	classes  ClassService
	exports  ExportService

	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := discardLogger()
	v := validator.New()
	env := &testEnv{
		repo:       newMemoryRepository(),
		dispatcher: &recordingDispatcher{},
		cache:      newMemoryCache(),
		clock:      baseTime,
	}
	notifications := NewNotificationEventService(env.dispatcher, logger)
	env.directory = NewClassDirectory(env.repo, env.cache, time.Minute, logger)

	env.quizzes = NewQuizService(env.repo, notifications, logger, v).(*quizService)
	env.quizzes.now = env.now
	env.attempts = NewAttemptService(env.repo, env.directory, notifications, logger, v).(*attemptService)
	env.attempts.now = env.now
	env.attempts.shuffle = func(n int, swap func(i, j int)) {
		// reverse, so shuffled output is recognisable
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	env.classes = NewClassService(env.repo, env.directory, notifications, logger, v)
	env.exports = NewExportService(env.repo, logger)
	return env
}

func (e *testEnv) now() time.Time {
	return e.clock
}

func (e *testEnv) newClass(t *testing.T, members ...string) uint {
	t.Helper()
	class, err := e.classes.Create(context.Background(), &CreateClassRequest{
		Name:      "Group A",
		MemberIDs: members,
	}, instructor)
	require.NoError(t, err)
	return class.ID
}

func (e *testEnv) newQuiz(t *testing.T, req *CreateQuizRequest) *QuizResponse {
	t.Helper()
	quiz, err := e.quizzes.Create(context.Background(), req, instructor)
	require.NoError(t, err)
	return quiz
}

func (e *testEnv) publish(t *testing.T, id uint) {
	t.Helper()
	_, err := e.quizzes.Publish(context.Background(), id, instructor)
	require.NoError(t, err)
}

// publishedQuiz creates a quiz with the given questions assigned to a class
// holding studentCaller, then publishes it.
func (e *testEnv) publishedQuiz(t *testing.T, settings QuizSettings, questions ...QuestionRequest) *QuizResponse {
	t.Helper()
	classID := e.newClass(t, studentCaller.UserID)
	quiz := e.newQuiz(t, &CreateQuizRequest{
		Title:        "Geography",
		QuizSettings: settings,
		Questions:    questions,
		ClassIDs:     []uint{classID},
	})
	e.publish(t, quiz.ID)
	return quiz
}

func (e *testEnv) submit(t *testing.T, quizID uint, answers assessment.Answers) (*AttemptSummaryResponse, error) {
	t.Helper()
	return e.attempts.SubmitAttempt(context.Background(), studentCaller.UserID, quizID, &SubmitAttemptRequest{
		Answers:   answers,
		StartedAt: e.clock.Add(-2 * time.Minute),
	})
}

func multipleChoice(correct, points int, options ...string) QuestionRequest {
	return QuestionRequest{
		Type:         models.MultipleChoice,
		Prompt:       "Pick one",
		Options:      options,
		CorrectIndex: &correct,
		Points:       &points,
	}
}

func shortAnswer(correct string, points int) QuestionRequest {
	return QuestionRequest{
		Type:        models.ShortAnswer,
		Prompt:      "Capital of France?",
		CorrectText: &correct,
		Points:      &points,
	}
}

func essay(points int) QuestionRequest {
	return QuestionRequest{
		Type:   models.Essay,
		Prompt: "Discuss",
		Points: &points,
	}
}

func questionIDs(t *testing.T, quiz *QuizResponse) []uint {
	t.Helper()
	ids := make([]uint, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func intPtr(v int) *int { return &v }
func boolPtr(v bool) *bool { return &v }
func timePtr(v time.Time) *time.Time { return &v }
func strPtr(v string) *string { return &v }
