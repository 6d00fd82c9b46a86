package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgres error codes the recorder treats as a lost race
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

type repository struct {
	db       *gorm.DB
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
	class    repositories.ClassRepository
}

// NewRepository wires the postgres stores around one connection pool.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		class:    NewClassPostgreSQL(db),
	}
}

func (r *repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *repository) Class() repositories.ClassRepository       { return r.class }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// conn picks the caller's transaction when there is one.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func isConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected:
			return true
		}
	}
	return false
}

// translateRecordError maps a failed attempt insert onto the engine's error
// kinds. Rule violations pass through, lost races become conflicts and
// everything else is a retryable persistence failure.
func translateRecordError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assessment.ErrAttemptLimitExceeded),
		errors.Is(err, assessment.ErrPersistenceConflict):
		return err
	case repositories.IsNotFoundError(err):
		return fmt.Errorf("%w: %v", assessment.ErrNotFound, err)
	case isConflict(err):
		return fmt.Errorf("%w: %v", assessment.ErrPersistenceConflict, err)
	default:
		return fmt.Errorf("%w: %v", assessment.ErrPersistenceFailed, err)
	}
}
