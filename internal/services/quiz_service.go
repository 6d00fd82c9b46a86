package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type quizService struct {
	repo      repositories.Repository
	events    NotificationEventService
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewQuizService(repo repositories.Repository, events NotificationEventService, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		events:    events,
		logger:    logger,
		log:       NewServiceLogger(logger, "quiz"),
		validator: validator,
		now:       time.Now,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, caller Caller) (*QuizResponse, error) {
	s.logger.Info("Creating quiz", "creator_id", caller.UserID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := validateWindow(req.QuizSettings); len(errs) > 0 {
		return nil, errs
	}

	questions := buildQuestions(req.Questions)
	if errs := s.validator.Question().ValidateQuestions(questions); len(errs) > 0 {
		return nil, errs
	}

	if !canAuthor(caller) {
		return nil, NewPermissionError(caller.UserID, 0, "quiz", "create", "insufficient role permissions")
	}

	classIDs := uniqueIDs(req.ClassIDs)
	if err := s.ensureClassesExist(ctx, classIDs); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   caller.UserID,
		TotalPoints: assessment.RecomputeTotalPoints(questions),
	}
	applySettings(quiz, req.QuizSettings)
	for _, id := range classIDs {
		quiz.Classes = append(quiz.Classes, models.Class{ID: id})
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Quiz().Create(ctx, tx, quiz); err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		return s.repo.Question().ReplaceForQuiz(ctx, tx, quiz.ID, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created successfully", "quiz_id", quiz.ID, "questions", len(questions))
	s.events.RecordAudit(ctx, caller, "quiz.create", "quiz", quiz.ID, map[string]interface{}{
		"title":        quiz.Title,
		"total_points": quiz.TotalPoints,
	})

	return s.GetByID(ctx, quiz.ID, caller)
}

func (s *quizService) GetByID(ctx context.Context, id uint, caller Caller) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		return nil, quizLookupError(id, err)
	}
	if err := ensureOwner(quiz, caller, "read"); err != nil {
		return nil, err
	}
	return buildQuizResponse(quiz), nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, caller Caller) (*QuizResponse, error) {
	op := s.log.WithOperation(ctx, "update_quiz", caller.UserID)

	err := s.update(ctx, id, req, caller)
	op.LogResult(id, "quiz", err)
	if err != nil {
		return nil, err
	}

	s.events.RecordAudit(ctx, caller, "quiz.update", "quiz", id, nil)
	return s.GetByID(ctx, id, caller)
}

func (s *quizService) update(ctx context.Context, id uint, req *UpdateQuizRequest, caller Caller) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		quiz, err := s.lockOwnedQuiz(ctx, tx, id, caller, "update")
		if err != nil {
			return err
		}
		if err := assessment.EnsureModifiable(quiz); err != nil {
			return err
		}

		if req.Title != nil {
			quiz.Title = *req.Title
		}
		if req.Description != nil {
			quiz.Description = req.Description
		}
		applySettings(quiz, req.QuizSettings)

		if errs := validateWindow(QuizSettings{AvailableFrom: quiz.AvailableFrom, AvailableUntil: quiz.AvailableUntil}); len(errs) > 0 {
			return errs
		}
		return s.repo.Quiz().Update(ctx, tx, quiz)
	})
}

func (s *quizService) Delete(ctx context.Context, id uint, caller Caller) error {
	s.logger.Info("Deleting quiz", "quiz_id", id, "user_id", caller.UserID)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		quiz, err := s.lockOwnedQuiz(ctx, tx, id, caller, "delete")
		if err != nil {
			return err
		}
		if err := assessment.EnsureDeletable(quiz); err != nil {
			return err
		}
		return s.repo.Quiz().Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Quiz deleted successfully", "quiz_id", id)
	s.events.RecordAudit(ctx, caller, "quiz.delete", "quiz", id, nil)
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters, caller Caller) (*QuizListResponse, error) {
	if !canAuthor(caller) {
		return nil, NewPermissionError(caller.UserID, 0, "quiz", "list", "insufficient role permissions")
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	quizzes, total, err := s.repo.Quiz().ListByCreator(ctx, nil, caller.UserID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	responses := make([]*QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, buildQuizResponse(quiz))
	}
	return &QuizListResponse{
		Quizzes: responses,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// ===== QUESTION SET =====

func (s *quizService) ReplaceQuestions(ctx context.Context, id uint, req *ReplaceQuestionsRequest, caller Caller) (*QuizResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	questions := buildQuestions(req.Questions)
	if errs := s.validator.Question().ValidateQuestions(questions); len(errs) > 0 {
		return nil, errs
	}

	err := s.mutateQuestions(ctx, id, caller, "replace_questions", func(tx *gorm.DB, quiz *models.Quiz) error {
		return s.repo.Question().ReplaceForQuiz(ctx, tx, quiz.ID, questions)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, caller)
}

func (s *quizService) AddQuestion(ctx context.Context, id uint, req *QuestionRequest, caller Caller) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	question := buildQuestion(*req, 0)
	if errs := s.validator.Question().ValidateQuestion("", question); len(errs) > 0 {
		return nil, errs
	}

	err := s.mutateQuestions(ctx, id, caller, "add_question", func(tx *gorm.DB, quiz *models.Quiz) error {
		position, err := s.repo.Question().NextPosition(ctx, tx, quiz.ID)
		if err != nil {
			return err
		}
		question.QuizID = quiz.ID
		question.Position = position
		return s.repo.Question().Create(ctx, tx, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, id, questionID uint, req *QuestionRequest, caller Caller) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	updated := buildQuestion(*req, 0)
	if errs := s.validator.Question().ValidateQuestion("", updated); len(errs) > 0 {
		return nil, errs
	}

	var question *models.Question
	err := s.mutateQuestions(ctx, id, caller, "update_question", func(tx *gorm.DB, quiz *models.Quiz) error {
		existing, err := s.questionOf(ctx, tx, quiz.ID, questionID)
		if err != nil {
			return err
		}
		updated.ID = existing.ID
		updated.QuizID = existing.QuizID
		updated.Position = existing.Position
		updated.CreatedAt = existing.CreatedAt
		question = updated
		return s.repo.Question().Update(ctx, tx, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *quizService) RemoveQuestion(ctx context.Context, id, questionID uint, caller Caller) error {
	return s.mutateQuestions(ctx, id, caller, "remove_question", func(tx *gorm.DB, quiz *models.Quiz) error {
		if _, err := s.questionOf(ctx, tx, quiz.ID, questionID); err != nil {
			return err
		}
		return s.repo.Question().Delete(ctx, tx, questionID)
	})
}

// mutateQuestions runs change on a locked, modifiable quiz and recomputes its
// total points before the transaction commits.
func (s *quizService) mutateQuestions(ctx context.Context, id uint, caller Caller, action string, change func(tx *gorm.DB, quiz *models.Quiz) error) error {
	op := s.log.WithOperation(ctx, action, caller.UserID)

	var totalPoints int
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		quiz, err := s.lockOwnedQuiz(ctx, tx, id, caller, action)
		if err != nil {
			return err
		}
		if err := assessment.EnsureModifiable(quiz); err != nil {
			return err
		}
		if err := change(tx, quiz); err != nil {
			return err
		}

		questions, err := s.repo.Question().ListByQuiz(ctx, tx, quiz.ID)
		if err != nil {
			return fmt.Errorf("failed to reload questions: %w", err)
		}
		totalPoints = assessment.RecomputeTotalPoints(questions)
		return s.repo.Quiz().UpdateTotalPoints(ctx, tx, quiz.ID, totalPoints)
	})
	op.LogResult(id, "quiz", err)
	if err != nil {
		return err
	}

	s.events.RecordAudit(ctx, caller, "quiz."+action, "quiz", id, map[string]interface{}{
		"total_points": totalPoints,
	})
	return nil
}

func (s *quizService) questionOf(ctx context.Context, tx *gorm.DB, quizID, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, tx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.QuizID != quizID {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// ===== CLASSES AND LIFECYCLE =====

func (s *quizService) AssignClasses(ctx context.Context, id uint, req *AssignClassesRequest, caller Caller) (*QuizResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	classIDs := uniqueIDs(req.ClassIDs)
	if err := s.ensureClassesExist(ctx, classIDs); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.lockOwnedQuiz(ctx, tx, id, caller, "assign_classes"); err != nil {
			return err
		}
		return s.repo.Quiz().ReplaceClasses(ctx, tx, id, classIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz classes assigned", "quiz_id", id, "class_ids", classIDs)
	s.events.RecordAudit(ctx, caller, "quiz.assign_classes", "quiz", id, map[string]interface{}{
		"class_ids": classIDs,
	})
	return s.GetByID(ctx, id, caller)
}

func (s *quizService) Publish(ctx context.Context, id uint, caller Caller) (*QuizResponse, error) {
	var published *models.Quiz
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		quiz, err := s.lockOwnedQuiz(ctx, tx, id, caller, "publish")
		if err != nil {
			return err
		}
		if err := assessment.Transition(quiz.Status, models.QuizStatusPublished); err != nil {
			return err
		}

		questions, err := s.repo.Question().ListByQuiz(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}
		if len(questions) == 0 {
			return NewBusinessRuleError("quiz_has_questions", "a quiz needs at least one question to be published",
				map[string]interface{}{"quiz_id": id})
		}
		if _, err := assessment.NewQuestionBank(questions); err != nil {
			return err
		}

		quiz.Status = models.QuizStatusPublished
		quiz.TotalPoints = assessment.RecomputeTotalPoints(questions)
		if err := s.repo.Quiz().Update(ctx, tx, quiz); err != nil {
			return err
		}
		published = quiz
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz published", "quiz_id", id, "total_points", published.TotalPoints)
	s.events.NotifyQuizPublished(ctx, published)
	s.events.RecordAudit(ctx, caller, "quiz.publish", "quiz", id, nil)
	return s.GetByID(ctx, id, caller)
}

func (s *quizService) Archive(ctx context.Context, id uint, caller Caller) (*QuizResponse, error) {
	var archived *models.Quiz
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		quiz, err := s.lockOwnedQuiz(ctx, tx, id, caller, "archive")
		if err != nil {
			return err
		}
		if err := assessment.Transition(quiz.Status, models.QuizStatusArchived); err != nil {
			return err
		}
		quiz.Status = models.QuizStatusArchived
		archived = quiz
		return s.repo.Quiz().Update(ctx, tx, quiz)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz archived", "quiz_id", id)
	s.events.NotifyQuizArchived(ctx, archived, s.now())
	s.events.RecordAudit(ctx, caller, "quiz.archive", "quiz", id, nil)
	return s.GetByID(ctx, id, caller)
}

// ===== HELPERS =====

// lockOwnedQuiz locks the quiz row for the rest of tx, so that attempts
// cannot be recorded between a guard check and the mutation it protects.
func (s *quizService) lockOwnedQuiz(ctx context.Context, tx *gorm.DB, id uint, caller Caller, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, quizLookupError(id, err)
	}
	if err := ensureOwner(quiz, caller, action); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) ensureClassesExist(ctx context.Context, classIDs []uint) error {
	if len(classIDs) == 0 {
		return nil
	}
	count, err := s.repo.Class().CountExisting(ctx, nil, classIDs)
	if err != nil {
		return fmt.Errorf("failed to check classes: %w", err)
	}
	if count != int64(len(classIDs)) {
		return ValidationErrors{*NewValidationError("class_ids", "references classes that do not exist", classIDs)}
	}
	return nil
}

func quizLookupError(id uint, err error) error {
	if repositories.IsNotFoundError(err) {
		return ErrQuizNotFound
	}
	return fmt.Errorf("failed to get quiz %d: %w", id, err)
}

func canAuthor(caller Caller) bool {
	return caller.Role == models.RoleInstructor || caller.IsAdmin()
}

// ensureOwner allows the quiz's creator and administrators
func ensureOwner(quiz *models.Quiz, caller Caller, action string) error {
	if caller.IsAdmin() || (canAuthor(caller) && quiz.CreatedBy == caller.UserID) {
		return nil
	}
	return NewPermissionError(caller.UserID, quiz.ID, "quiz", action, "not owner or insufficient permissions")
}

func validateWindow(settings QuizSettings) ValidationErrors {
	if settings.AvailableFrom != nil && settings.AvailableUntil != nil &&
		!settings.AvailableUntil.After(*settings.AvailableFrom) {
		return ValidationErrors{*NewValidationError("available_until", "must be after available_from", settings.AvailableUntil)}
	}
	return nil
}

func applySettings(quiz *models.Quiz, settings QuizSettings) {
	if settings.TimeLimit != nil {
		quiz.TimeLimit = settings.TimeLimit
	}
	if settings.AllowedAttempts != nil {
		quiz.AllowedAttempts = settings.AllowedAttempts
	}
	if settings.PassingScore != nil {
		quiz.PassingScore = settings.PassingScore
	}
	if settings.AvailableFrom != nil {
		quiz.AvailableFrom = settings.AvailableFrom
	}
	if settings.AvailableUntil != nil {
		quiz.AvailableUntil = settings.AvailableUntil
	}
	if settings.ShuffleQuestions != nil {
		quiz.ShuffleQuestions = *settings.ShuffleQuestions
	}
	if settings.RandomizeOptions != nil {
		quiz.RandomizeOptions = *settings.RandomizeOptions
	}
	if settings.FullscreenMode != nil {
		quiz.FullscreenMode = *settings.FullscreenMode
	}
	if settings.DisableCopyPaste != nil {
		quiz.DisableCopyPaste = *settings.DisableCopyPaste
	}
	if settings.ShowResults != nil {
		quiz.ShowResults = *settings.ShowResults
	}
}

func buildQuestions(reqs []QuestionRequest) []*models.Question {
	questions := make([]*models.Question, 0, len(reqs))
	for i, req := range reqs {
		questions = append(questions, buildQuestion(req, i))
	}
	return questions
}

func buildQuestion(req QuestionRequest, position int) *models.Question {
	question := &models.Question{
		Type:         req.Type,
		Prompt:       req.Prompt,
		Position:     position,
		Points:       1,
		CorrectIndex: req.CorrectIndex,
		CorrectText:  req.CorrectText,
		Explanation:  req.Explanation,
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.Options != nil {
		// A []string always encodes
		_ = question.SetOptions(req.Options)
	}
	return question
}

func buildQuizResponse(quiz *models.Quiz) *QuizResponse {
	return &QuizResponse{
		Quiz:      *quiz,
		ClassIDs:  quiz.ClassIDs(),
		CanEdit:   assessment.CanModify(quiz),
		CanDelete: assessment.CanDelete(quiz),
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
