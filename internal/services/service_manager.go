package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/cache"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/validator"
)

// ManagerConfig carries the collaborators shared by all services
type ManagerConfig struct {
	Repository    repositories.Repository
	Cache         cache.CacheService // optional
	ClassCacheTTL time.Duration
	Dispatcher    EventDispatcher // optional
	Logger        *slog.Logger
	Validator     *validator.Validator
}

type serviceManager struct {
	quiz    QuizService
	attempt AttemptService
	class   ClassService
	export  ExportService
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	notifications := NewNotificationEventService(cfg.Dispatcher, cfg.Logger)
	directory := NewClassDirectory(cfg.Repository, cfg.Cache, cfg.ClassCacheTTL, cfg.Logger)

	return &serviceManager{
		quiz:    NewQuizService(cfg.Repository, notifications, cfg.Logger, cfg.Validator),
		attempt: NewAttemptService(cfg.Repository, directory, notifications, cfg.Logger, cfg.Validator),
		class:   NewClassService(cfg.Repository, directory, notifications, cfg.Logger, cfg.Validator),
		export:  NewExportService(cfg.Repository, cfg.Logger),
	}
}

func (m *serviceManager) Quiz() QuizService       { return m.quiz }
func (m *serviceManager) Attempt() AttemptService { return m.attempt }
func (m *serviceManager) Class() ClassService     { return m.class }
func (m *serviceManager) Export() ExportService   { return m.export }
