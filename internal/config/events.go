package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled           bool
	Publisher         string // kafka, channel or mock
	KafkaBrokers      string
	NotificationTopic string
	QueueSize         int
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	brokers := make([]string, 0)
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.NotificationTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.NotificationTopic,
			Logger:       logger,
		})
	case "channel":
		logger.Info("Using in-process channel event publisher", "topic", c.NotificationTopic)
		return events.NewChannelEventPublisher(c.NotificationTopic, c.QueueSize, logger), nil
	case "mock":
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}

// CreateDispatcher wraps the configured publisher in the async dispatcher
// used by the services.
func (c *EventConfig) CreateDispatcher(logger *slog.Logger) (*events.Dispatcher, error) {
	publisher, err := c.CreateEventPublisher(logger)
	if err != nil {
		return nil, err
	}
	return events.NewDispatcher(publisher, events.DispatcherConfig{QueueSize: c.QueueSize}, logger), nil
}
