package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/events"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
)

// EventDispatcher accepts events for asynchronous delivery. *events.Dispatcher satisfies it.
type EventDispatcher interface {
	Dispatch(event *events.NotificationEvent) bool
}

// NotificationEventService emits notification and audit events for
// successful mutations. Emission never fails the calling operation.
type NotificationEventService interface {
	NotifyQuizPublished(ctx context.Context, quiz *models.Quiz)
	NotifyQuizArchived(ctx context.Context, quiz *models.Quiz, archivedAt time.Time)
	NotifyAttemptSubmitted(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt)
	NotifyManualGradingRequired(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt, questionCount int)
	RecordAudit(ctx context.Context, caller Caller, action, resourceType string, resourceID uint, details map[string]interface{})
}

type notificationEventService struct {
	dispatcher EventDispatcher
	logger     *slog.Logger
}

// NewNotificationEventService returns a service that drops every event when dispatcher is nil
func NewNotificationEventService(dispatcher EventDispatcher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ===== QUIZ NOTIFICATIONS =====

func (s *notificationEventService) NotifyQuizPublished(ctx context.Context, quiz *models.Quiz) {
	s.emit(ctx, events.NewQuizPublishedEvent(events.QuizPublishedEvent{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		ClassIDs:       quiz.ClassIDs(),
		AvailableFrom:  quiz.AvailableFrom,
		AvailableUntil: quiz.AvailableUntil,
		TimeLimit:      quiz.TimeLimit,
		CreatorID:      quiz.CreatedBy,
	}))
}

func (s *notificationEventService) NotifyQuizArchived(ctx context.Context, quiz *models.Quiz, archivedAt time.Time) {
	s.emit(ctx, events.NewQuizArchivedEvent(events.QuizArchivedEvent{
		QuizID:     quiz.ID,
		QuizTitle:  quiz.Title,
		ArchivedAt: archivedAt,
		CreatorID:  quiz.CreatedBy,
	}))
}

// ===== ATTEMPT NOTIFICATIONS =====

func (s *notificationEventService) NotifyAttemptSubmitted(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt) {
	s.emit(ctx, events.NewAttemptSubmittedEvent(events.AttemptSubmittedEvent{
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		QuizID:        quiz.ID,
		QuizTitle:     quiz.Title,
		StudentID:     attempt.StudentID,
		InstructorID:  quiz.CreatedBy,
		Score:         attempt.Score,
		MaxScore:      attempt.MaxScore,
		Percentage:    attempt.Percentage,
		Passed:        attempt.Passed,
		IsLate:        attempt.IsLate,
		SubmittedAt:   attempt.CompletedAt,
	}))
}

func (s *notificationEventService) NotifyManualGradingRequired(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt, questionCount int) {
	s.emit(ctx, events.NewManualGradingRequiredEvent(events.ManualGradingRequiredEvent{
		AttemptID:     attempt.ID,
		QuizID:        quiz.ID,
		QuizTitle:     quiz.Title,
		StudentID:     attempt.StudentID,
		InstructorID:  quiz.CreatedBy,
		QuestionCount: questionCount,
	}))
}

// ===== AUDIT =====

func (s *notificationEventService) RecordAudit(ctx context.Context, caller Caller, action, resourceType string, resourceID uint, details map[string]interface{}) {
	s.emit(ctx, events.NewAuditEvent(events.AuditEvent{
		Action:       action,
		ActorID:      caller.UserID,
		ActorRole:    string(caller.Role),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}))
}

func (s *notificationEventService) emit(ctx context.Context, event *events.NotificationEvent) {
	if s.dispatcher == nil {
		return
	}
	if !s.dispatcher.Dispatch(event) {
		s.logger.WarnContext(ctx, "Event not queued", "event_id", event.ID, "event_type", event.Type)
		return
	}
	s.logger.DebugContext(ctx, "Event queued", "event_id", event.ID, "event_type", event.Type)
}
