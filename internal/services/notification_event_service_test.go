package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/events"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationEventService_DeliversThroughDispatcher(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	publisher := events.NewMockEventPublisher(logger)
	dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{QueueSize: 8}, logger)
	service := NewNotificationEventService(dispatcher, logger)

	quiz := &models.Quiz{ID: 7, Title: "Rivers", CreatedBy: instructor.UserID, Classes: []models.Class{{ID: 3}}}
	attempt := &models.QuizAttempt{ID: 11, QuizID: 7, StudentID: "stu-1", AttemptNumber: 1, Score: 4, MaxScore: 5, IsLate: true}

	service.NotifyQuizPublished(ctx, quiz)
	service.NotifyAttemptSubmitted(ctx, quiz, attempt)
	service.NotifyManualGradingRequired(ctx, quiz, attempt, 2)
	service.NotifyQuizArchived(ctx, quiz, baseTime)
	service.RecordAudit(ctx, instructor, "quiz.publish", "quiz", quiz.ID, nil)

	closeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, dispatcher.Close(closeCtx))

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 5)
	assert.Equal(t, events.EventQuizPublished, published[0].Type)
	assert.Equal(t, []uint{3}, published[0].Data.(events.QuizPublishedEvent).ClassIDs)

	submitted := published[1]
	assert.Equal(t, events.EventAttemptSubmitted, submitted.Type)
	assert.Equal(t, true, submitted.Metadata["late"])
	assert.Equal(t, instructor.UserID, submitted.Data.(events.AttemptSubmittedEvent).InstructorID)

	assert.Equal(t, events.EventManualGradingRequired, published[2].Type)
	assert.Equal(t, events.EventQuizArchived, published[3].Type)

	audit := published[4].Data.(events.AuditEvent)
	assert.Equal(t, "quiz.publish", audit.Action)
	assert.Equal(t, string(models.RoleInstructor), audit.ActorRole)
}

func TestNotificationEventService_NeverFailsCaller(t *testing.T) {
	ctx := context.Background()
	quiz := &models.Quiz{ID: 1}

	t.Run("nil dispatcher", func(t *testing.T) {
		service := NewNotificationEventService(nil, discardLogger())
		assert.NotPanics(t, func() { service.NotifyQuizPublished(ctx, quiz) })
	})

	t.Run("full queue", func(t *testing.T) {
		dispatcher := &recordingDispatcher{refuse: true}
		service := NewNotificationEventService(dispatcher, discardLogger())
		assert.NotPanics(t, func() { service.RecordAudit(ctx, admin, "quiz.delete", "quiz", 1, nil) })
		assert.Empty(t, dispatcher.types())
	})

	t.Run("publisher errors stay inside the dispatcher", func(t *testing.T) {
		logger := discardLogger()
		publisher := events.NewMockEventPublisher(logger)
		publisher.Err = errors.New("broker down")
		dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{}, logger)
		service := NewNotificationEventService(dispatcher, logger)

		service.NotifyQuizPublished(ctx, quiz)

		closeCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		assert.NoError(t, dispatcher.Close(closeCtx))
	})
}
