package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/validator"
	"gorm.io/gorm"
)

type classService struct {
	repo      repositories.Repository
	directory ClassDirectory
	events    NotificationEventService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, directory ClassDirectory, events NotificationEventService, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		directory: directory,
		events:    events,
		logger:    logger,
		validator: validator,
	}
}

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, caller Caller) (*ClassResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !canAuthor(caller) {
		return nil, NewPermissionError(caller.UserID, 0, "class", "create", "insufficient role permissions")
	}

	class := &models.Class{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   caller.UserID,
	}
	members := uniqueStrings(req.MemberIDs)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Class().Create(ctx, tx, class); err != nil {
			return err
		}
		return s.repo.Class().AddMembers(ctx, tx, class.ID, members)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.directory.Invalidate(ctx, members...)
	s.logger.Info("Class created", "class_id", class.ID, "members", len(members))
	s.events.RecordAudit(ctx, caller, "class.create", "class", class.ID, map[string]interface{}{
		"name":    class.Name,
		"members": len(members),
	})

	return &ClassResponse{
		ID:          class.ID,
		Name:        class.Name,
		Description: class.Description,
		CreatedBy:   class.CreatedBy,
		MemberIDs:   members,
	}, nil
}

func (s *classService) AddMembers(ctx context.Context, classID uint, req *ClassMembersRequest, caller Caller) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if _, err := s.ownedClass(ctx, classID, caller, "add_members"); err != nil {
		return err
	}

	members := uniqueStrings(req.UserIDs)
	if err := s.repo.Class().AddMembers(ctx, nil, classID, members); err != nil {
		return err
	}

	s.directory.Invalidate(ctx, members...)
	s.events.RecordAudit(ctx, caller, "class.add_members", "class", classID, map[string]interface{}{
		"user_ids": members,
	})
	return nil
}

func (s *classService) RemoveMember(ctx context.Context, classID uint, userID string, caller Caller) error {
	if _, err := s.ownedClass(ctx, classID, caller, "remove_member"); err != nil {
		return err
	}
	if err := s.repo.Class().RemoveMember(ctx, nil, classID, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMemberNotFound
		}
		return err
	}

	s.directory.Invalidate(ctx, userID)
	s.events.RecordAudit(ctx, caller, "class.remove_member", "class", classID, map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *classService) ownedClass(ctx context.Context, classID uint, caller Caller, action string) (*models.Class, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	if !caller.IsAdmin() && !(canAuthor(caller) && class.CreatedBy == caller.UserID) {
		return nil, NewPermissionError(caller.UserID, classID, "class", action, "not owner or insufficient permissions")
	}
	return class, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique
}
