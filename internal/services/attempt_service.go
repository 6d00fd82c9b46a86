package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/validator"
	"gorm.io/datatypes"
)

type attemptService struct {
	repo      repositories.Repository
	classes   ClassDirectory
	events    NotificationEventService
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

func NewAttemptService(
	repo repositories.Repository,
	classes ClassDirectory,
	events NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		classes:   classes,
		events:    events,
		logger:    logger,
		log:       NewServiceLogger(logger, "attempt"),
		validator: validator,
		now:       time.Now,
		shuffle:   rand.Shuffle,
	}
}

// ===== STUDENT LISTING =====

func (s *attemptService) ListAvailableQuizzes(ctx context.Context, studentID string) ([]AvailableQuizResponse, error) {
	now := s.now()

	classIDs, err := s.classes.ClassIDsForUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(classIDs) == 0 {
		return []AvailableQuizResponse{}, nil
	}

	quizzes, err := s.repo.Quiz().ListPublishedForClasses(ctx, nil, classIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return []AvailableQuizResponse{}, nil
	}

	quizIDs := make([]uint, 0, len(quizzes))
	for _, quiz := range quizzes {
		quizIDs = append(quizIDs, quiz.ID)
	}
	counts, err := s.repo.Attempt().CountByStudentForQuizzes(ctx, nil, studentID, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	available := make([]AvailableQuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		used := counts[quiz.ID]
		_, authErr := assessment.AuthorizeAttempt(quiz, classIDs, used, now)

		available = append(available, AvailableQuizResponse{
			ID:                quiz.ID,
			Title:             quiz.Title,
			Description:       quiz.Description,
			TimeLimit:         quiz.TimeLimit,
			AllowedAttempts:   quiz.AllowedAttempts,
			PassingScore:      quiz.PassingScore,
			AvailableFrom:     quiz.AvailableFrom,
			AvailableUntil:    quiz.AvailableUntil,
			TotalPoints:       quiz.TotalPoints,
			FullscreenMode:    quiz.FullscreenMode,
			DisableCopyPaste:  quiz.DisableCopyPaste,
			Completed:         used > 0,
			AttemptsUsed:      used,
			AttemptsRemaining: assessment.AttemptsRemaining(quiz, used),
			CanStart:          authErr == nil,
			BlockedReason:     ErrorCode(authErr),
		})
	}
	return available, nil
}

// GetQuizForAttempt returns the student view of a quiz the student may start
// now. Correct answers and explanations are never included.
func (s *attemptService) GetQuizForAttempt(ctx context.Context, studentID string, quizID uint) (*TakeQuizResponse, error) {
	now := s.now()

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(quizID, err)
	}
	classIDs, err := s.classes.ClassIDsForUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	used, err := s.repo.Attempt().CountByStudentAndQuiz(ctx, nil, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if _, err := assessment.AuthorizeAttempt(quiz, classIDs, used, now); err != nil {
		return nil, err
	}

	bank, err := assessment.NewQuestionBank(questionRows(quiz))
	if err != nil {
		return nil, err
	}

	views := make([]TakeQuestionView, 0, bank.Len())
	for _, q := range bank.Questions() {
		view := TakeQuestionView{
			ID:     q.ID,
			Type:   q.Body.Type(),
			Prompt: q.Prompt,
			Points: q.Points,
		}
		view.Options = s.optionViews(q.Body, quiz.RandomizeOptions)
		views = append(views, view)
	}
	if quiz.ShuffleQuestions {
		s.shuffle(len(views), func(i, j int) { views[i], views[j] = views[j], views[i] })
	}

	return &TakeQuizResponse{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		TimeLimit:        quiz.TimeLimit,
		AvailableUntil:   quiz.AvailableUntil,
		TotalPoints:      bank.TotalPoints(),
		FullscreenMode:   quiz.FullscreenMode,
		DisableCopyPaste: quiz.DisableCopyPaste,
		AttemptNumber:    used + 1,
		StartedAt:        now,
		Questions:        views,
	}, nil
}

// optionViews keeps each option's stored index so a shuffled display still
// submits the index the grader compares against.
func (s *attemptService) optionViews(body assessment.QuestionBody, randomize bool) []OptionView {
	var options []string
	switch b := body.(type) {
	case assessment.MultipleChoiceBody:
		options = b.Options
	case assessment.TrueFalseBody:
		options = b.Options
	default:
		return nil
	}

	views := make([]OptionView, len(options))
	for i, option := range options {
		views[i] = OptionView{Index: i, Text: option}
	}
	if randomize {
		s.shuffle(len(views), func(i, j int) { views[i], views[j] = views[j], views[i] })
	}
	return views
}

// ===== SUBMISSION =====

// SubmitAttempt authorizes, grades, scores and records one submission. Each
// stage stops at its first failure and nothing is stored unless every stage
// before the recorder succeeded.
func (s *attemptService) SubmitAttempt(ctx context.Context, studentID string, quizID uint, req *SubmitAttemptRequest) (*AttemptSummaryResponse, error) {
	op := s.log.WithOperation(ctx, "submit_attempt", studentID)

	sub, err := s.submit(ctx, studentID, quizID, req)
	if err != nil {
		op.LogResult(0, "quiz_attempt", err)
		return nil, err
	}
	op.LogResult(sub.attempt.ID, "quiz_attempt", nil)
	quiz, attempt := sub.quiz, sub.attempt

	// Side effects run after the attempt is stored and cannot fail it
	s.events.NotifyAttemptSubmitted(ctx, quiz, attempt)
	if review := countNeedsReview(sub.graded); review > 0 {
		s.events.NotifyManualGradingRequired(ctx, quiz, attempt, review)
	}
	s.events.RecordAudit(ctx, Caller{UserID: studentID, Role: models.RoleStudent},
		"attempt.submit", "quiz_attempt", attempt.ID, map[string]interface{}{
			"quiz_id":        quizID,
			"attempt_number": attempt.AttemptNumber,
			"score":          attempt.Score,
			"is_late":        attempt.IsLate,
		})

	return sub.summary, nil
}

// submission is what a successful submit hands back for side effects
type submission struct {
	summary *AttemptSummaryResponse
	quiz    *models.Quiz
	attempt *models.QuizAttempt
	graded  []assessment.GradedAnswer
}

func (s *attemptService) submit(ctx context.Context, studentID string, quizID uint, req *SubmitAttemptRequest) (*submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	completedAt := s.now()

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(quizID, err)
	}
	classIDs, err := s.classes.ClassIDsForUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	used, err := s.repo.Attempt().CountByStudentAndQuiz(ctx, nil, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	// Availability is judged at the moment the attempt began
	startedAt := assessment.EffectiveStart(req.StartedAt, completedAt)
	if _, err := assessment.AuthorizeAttempt(quiz, classIDs, used, startedAt); err != nil {
		return nil, err
	}

	bank, err := assessment.NewQuestionBank(questionRows(quiz))
	if err != nil {
		return nil, err
	}
	graded, err := assessment.Grade(bank, req.Answers)
	if err != nil {
		return nil, err
	}
	result := assessment.Score(graded, assessment.ScoreInput{
		PassingScore:   quiz.PassingScore,
		TimeLimit:      quiz.TimeLimit,
		AvailableUntil: quiz.AvailableUntil,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	})

	rawAnswers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	gradedAnswers, err := json.Marshal(graded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graded answers: %w", err)
	}

	attempt := &models.QuizAttempt{
		QuizID:           quiz.ID,
		StudentID:        studentID,
		RawAnswers:       datatypes.JSON(rawAnswers),
		GradedAnswers:    datatypes.JSON(gradedAnswers),
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		Percentage:       result.Percentage,
		Passed:           result.Passed,
		IsLate:           result.IsLate,
		OverTimeLimit:    result.OverTimeLimit,
		NeedsReview:      assessment.NeedsReview(graded),
		TimeSpentSeconds: result.TimeSpentSeconds,
		StartedAt:        startedAt,
		CompletedAt:      completedAt,
	}
	if err := s.repo.Attempt().Record(ctx, attempt, quiz.Version); err != nil {
		return nil, err
	}

	s.logger.Info("Attempt recorded",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"student_id", studentID,
		"attempt_number", attempt.AttemptNumber,
		"score", attempt.Score,
		"max_score", attempt.MaxScore,
		"is_late", attempt.IsLate)

	summary := &AttemptSummaryResponse{
		AttemptID:        attempt.ID,
		AttemptNumber:    attempt.AttemptNumber,
		Score:            attempt.Score,
		MaxScore:         attempt.MaxScore,
		Percentage:       attempt.Percentage,
		Passed:           attempt.Passed,
		IsLate:           attempt.IsLate,
		OverTimeLimit:    attempt.OverTimeLimit,
		NeedsReview:      attempt.NeedsReview,
		TimeSpentSeconds: attempt.TimeSpentSeconds,
		CompletedAt:      attempt.CompletedAt,
	}
	if quiz.ShowResults {
		summary.GradedAnswers = graded
	}
	return &submission{summary: summary, quiz: quiz, attempt: attempt, graded: graded}, nil
}

// ===== HISTORY =====

func (s *attemptService) GetAttemptHistory(ctx context.Context, studentID string, quizID uint) ([]AttemptResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(quizID, err)
	}

	attempts, err := s.repo.Attempt().ListByStudentAndQuiz(ctx, nil, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return s.buildAttemptResponses(attempts, quiz.ShowResults), nil
}

func (s *attemptService) ListQuizAttempts(ctx context.Context, quizID uint, caller Caller) ([]AttemptResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(quizID, err)
	}
	if err := ensureOwner(quiz, caller, "list_attempts"); err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt().ListByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return s.buildAttemptResponses(attempts, true), nil
}

func (s *attemptService) buildAttemptResponses(attempts []*models.QuizAttempt, withBreakdown bool) []AttemptResponse {
	responses := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		response := AttemptResponse{
			ID:               attempt.ID,
			QuizID:           attempt.QuizID,
			StudentID:        attempt.StudentID,
			AttemptNumber:    attempt.AttemptNumber,
			Score:            attempt.Score,
			MaxScore:         attempt.MaxScore,
			Percentage:       attempt.Percentage,
			Passed:           attempt.Passed,
			IsLate:           attempt.IsLate,
			OverTimeLimit:    attempt.OverTimeLimit,
			NeedsReview:      attempt.NeedsReview,
			TimeSpentSeconds: attempt.TimeSpentSeconds,
			StartedAt:        attempt.StartedAt,
			CompletedAt:      attempt.CompletedAt,
		}
		if withBreakdown && len(attempt.GradedAnswers) > 0 {
			if err := json.Unmarshal(attempt.GradedAnswers, &response.GradedAnswers); err != nil {
				s.logger.Warn("Stored graded answers are not decodable", "attempt_id", attempt.ID, "error", err)
			}
		}
		responses = append(responses, response)
	}
	return responses
}

// ===== HELPERS =====

func questionRows(quiz *models.Quiz) []*models.Question {
	rows := make([]*models.Question, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		rows = append(rows, &quiz.Questions[i])
	}
	return rows
}

func countNeedsReview(graded []assessment.GradedAnswer) int {
	count := 0
	for _, g := range graded {
		if g.NeedsReview {
			count++
		}
	}
	return count
}
