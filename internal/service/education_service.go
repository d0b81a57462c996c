package service

import (
	"context"
	"strings"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/validation"
	"go.uber.org/zap"
)

const educationAlreadySetMessage = "Education level is already set and cannot be changed."

type EducationService struct {
	store  repository.Factory
	logger *zap.Logger
}

func NewEducationService(store repository.Factory, logger *zap.Logger) *EducationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EducationService{store: store, logger: logger}
}

// Get returns the caller's level, or nil when none is stored.
func (s *EducationService) Get(ctx context.Context, userID string) (*models.EducationLevel, error) {
	level, err := s.store.ForUser(userID).EducationLevels.Get(ctx, userID)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return level, nil
}

// Set writes the caller's level once. Any later attempt fails with
// AlreadySet, including a concurrent first write that lost the race.
func (s *EducationService) Set(ctx context.Context, userID, level string) (*models.EducationLevel, error) {
	level, err := normalizeLevel(level)
	if err != nil {
		return nil, err
	}

	repo := s.store.ForUser(userID).EducationLevels
	existing, err := repo.Get(ctx, userID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if !models.CanWriteEducationLevel(existing) {
		return nil, apperr.AlreadySet(educationAlreadySetMessage)
	}

	row := &models.EducationLevel{UserID: userID, Level: &level}
	written, err := repo.InsertIfUnset(ctx, row)
	if apperr.IsConflict(err) {
		return nil, apperr.AlreadySet(educationAlreadySetMessage)
	}
	if err != nil {
		return nil, err
	}
	if !written {
		return nil, apperr.AlreadySet(educationAlreadySetMessage)
	}
	return row, nil
}

// AdminSet replaces targetUserID's level regardless of its current value.
// The admin check and the write are separate steps.
func (s *EducationService) AdminSet(ctx context.Context, caller *auth.Principal, targetUserID, level string) (*models.EducationLevel, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Forbidden("Admin access required")
	}
	if !validation.ValidateID(targetUserID) {
		return nil, apperr.Validation("Invalid user id")
	}
	level, err := normalizeLevel(level)
	if err != nil {
		return nil, err
	}

	row := &models.EducationLevel{UserID: targetUserID, Level: &level}
	if err := s.store.Admin().EducationLevels.Upsert(ctx, row); err != nil {
		return nil, err
	}
	s.logger.Info("education level overridden",
		zap.String("admin_id", caller.ID),
		zap.String("user_id", targetUserID),
	)
	return row, nil
}

func normalizeLevel(level string) (string, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return "", apperr.Validation("Education level is required")
	}
	if !validation.ValidateEducationLevel(level) {
		return "", apperr.Validation("Education level is too long")
	}
	return level, nil
}
