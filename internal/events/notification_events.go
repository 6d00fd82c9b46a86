package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "quiz-assessment-service"
	eventVersion = "1.0"
)

// EventType represents different types of notification events
type EventType string

const (
	// Quiz events
	EventQuizPublished EventType = "quiz.published"
	EventQuizArchived  EventType = "quiz.archived"

	// Attempt events
	EventAttemptSubmitted EventType = "attempt.submitted"

	// Grading events
	EventManualGradingRequired EventType = "grading.manual_required"

	// Audit trail of catalog and attempt mutations
	EventAuditRecorded EventType = "audit.recorded"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Quiz notification event payloads

type QuizPublishedEvent struct {
	QuizID         uint       `json:"quiz_id"`
	QuizTitle      string     `json:"quiz_title"`
	ClassIDs       []uint     `json:"class_ids"`
	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	TimeLimit      *int       `json:"time_limit,omitempty"` // minutes
	CreatorID      string     `json:"creator_id"`
}

type QuizArchivedEvent struct {
	QuizID     uint      `json:"quiz_id"`
	QuizTitle  string    `json:"quiz_title"`
	ArchivedAt time.Time `json:"archived_at"`
	CreatorID  string    `json:"creator_id"`
}

// Attempt notification event payloads

type AttemptSubmittedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	AttemptNumber int       `json:"attempt_number"`
	QuizID        uint      `json:"quiz_id"`
	QuizTitle     string    `json:"quiz_title"`
	StudentID     string    `json:"student_id"`
	InstructorID  string    `json:"instructor_id"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"max_score"`
	Percentage    float64   `json:"percentage"`
	Passed        bool      `json:"passed"`
	IsLate        bool      `json:"is_late"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type ManualGradingRequiredEvent struct {
	AttemptID     uint   `json:"attempt_id"`
	QuizID        uint   `json:"quiz_id"`
	QuizTitle     string `json:"quiz_title"`
	StudentID     string `json:"student_id"`
	InstructorID  string `json:"instructor_id"`
	QuestionCount int    `json:"question_count"`
}

type AuditEvent struct {
	Action       string                 `json:"action"`
	ActorID      string                 `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   uint                   `json:"resource_id"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// ===== EVENT FACTORIES =====

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewQuizPublishedEvent(payload QuizPublishedEvent) *NotificationEvent {
	return newEvent(EventQuizPublished, payload)
}

func NewQuizArchivedEvent(payload QuizArchivedEvent) *NotificationEvent {
	return newEvent(EventQuizArchived, payload)
}

func NewAttemptSubmittedEvent(payload AttemptSubmittedEvent) *NotificationEvent {
	event := newEvent(EventAttemptSubmitted, payload)
	event.Metadata = map[string]interface{}{"late": payload.IsLate}
	return event
}

func NewManualGradingRequiredEvent(payload ManualGradingRequiredEvent) *NotificationEvent {
	return newEvent(EventManualGradingRequired, payload)
}

func NewAuditEvent(payload AuditEvent) *NotificationEvent {
	return newEvent(EventAuditRecorded, payload)
}

// GenerateEventID returns a random UUID
func GenerateEventID() string {
	return uuid.NewString()
}
