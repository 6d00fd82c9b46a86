package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrDispatcherClosed = errors.New("event dispatcher is closed")

type DispatcherConfig struct {
	QueueSize      int
	PublishTimeout time.Duration
}

// Dispatcher hands events to a publisher from a single background goroutine.
// Dispatch never blocks: when the queue is full the event is dropped and
// logged. Publish failures are logged and otherwise ignored.
type Dispatcher struct {
	publisher EventPublisher
	logger    *slog.Logger
	timeout   time.Duration

	queue chan *NotificationEvent
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(publisher EventPublisher, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		publisher: publisher,
		logger:    logger,
		timeout:   config.PublishTimeout,
		queue:     make(chan *NotificationEvent, config.QueueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch enqueues event and reports whether it was accepted.
func (d *Dispatcher) Dispatch(event *NotificationEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dropping event, dispatcher closed", "event_id", event.ID, "event_type", event.Type)
		return false
	}

	select {
	case d.queue <- event:
		return true
	default:
		d.logger.Warn("Dropping event, dispatch queue full", "event_id", event.ID, "event_type", event.Type)
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.publish(event)
	}
}

func (d *Dispatcher) publish(event *NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.publisher.PublishNotificationEvent(ctx, event); err != nil {
		d.logger.Error("Failed to deliver event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

// Close stops accepting events, drains the queue, then closes the publisher.
// It gives up waiting for the drain when ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		d.logger.Warn("Event queue not drained before shutdown", "pending", len(d.queue))
		return ctx.Err()
	}
	return d.publisher.Close()
}
