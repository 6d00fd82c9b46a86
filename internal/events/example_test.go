package events_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/events"
)

// A notification consumer in the same binary subscribes to the channel
// publisher while the services dispatch through the async dispatcher.
func ExampleDispatcher() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewChannelEventPublisher("notifications", 8, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := publisher.Subscribe(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}

	dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{QueueSize: 8}, logger)
	dispatcher.Dispatch(events.NewAttemptSubmittedEvent(events.AttemptSubmittedEvent{
		AttemptID:     1,
		AttemptNumber: 1,
		QuizID:        5,
		StudentID:     "stu-1",
		Score:         3,
		MaxScore:      3,
		Percentage:    100,
		Passed:        true,
	}))

	select {
	case msg := <-messages:
		event, err := events.DecodeEvent(msg)
		if err != nil {
			fmt.Println(err)
			return
		}
		msg.Ack()
		data := event.Data.(map[string]interface{})
		fmt.Println(event.Type, data["student_id"], data["passed"])
	case <-ctx.Done():
		fmt.Println("no event received")
	}

	if err := dispatcher.Close(ctx); err != nil {
		fmt.Println(err)
	}
	// Output: attempt.submitted stu-1 true
}
