package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/ai"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/metrics"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/validation"
	"go.uber.org/zap"
)

const MaxTutorMessageLength = 2000

type TutorService struct {
	generator ai.Generator
	store     repository.Factory
	logger    *zap.Logger
	now       func() time.Time
}

func NewTutorService(generator ai.Generator, store repository.Factory, logger *zap.Logger) *TutorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorService{
		generator: generator,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Send asks the tutor model for a reply to message and records the exchange
// in the caller's session log. Nothing is recorded when generation fails.
func (s *TutorService) Send(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperr.Validation("Message is required")
	}
	if !validation.ValidateLength(message, MaxTutorMessageLength) {
		return "", apperr.Validation("Message is too long")
	}

	asked := s.now().UTC()
	reply, err := s.generate(ctx, message)
	if err != nil {
		return "", err
	}

	userTurn := models.ChatTurn{Content: message, CreatedAt: asked, Sender: models.SenderUser}
	aiTurn := models.ChatTurn{Content: reply, CreatedAt: s.now().UTC(), Sender: models.SenderAI}
	if err := s.record(ctx, userID, userTurn, aiTurn); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns the caller's turns, oldest first.
func (s *TutorService) History(ctx context.Context, userID string) ([]models.ChatTurn, error) {
	session, err := s.store.ForUser(userID).ChatSessions.FindByUser(ctx, userID)
	if apperr.IsNotFound(err) {
		return []models.ChatTurn{}, nil
	}
	if err != nil {
		return nil, err
	}
	if session.Messages == nil {
		return []models.ChatTurn{}, nil
	}
	return session.Messages, nil
}

func (s *TutorService) generate(ctx context.Context, message string) (string, error) {
	start := time.Now()
	reply, err := s.generator.Generate(ctx, ai.TutorPrompt(message))
	switch {
	case err == nil:
		metrics.ObserveGeneration("ok", time.Since(start))
		return reply, nil
	case errors.Is(err, apperr.ErrQuotaExceeded):
		metrics.ObserveGeneration("quota", time.Since(start))
	default:
		metrics.ObserveGeneration("error", time.Since(start))
	}

	s.logger.Warn("tutor generation failed", zap.Error(err))
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return "", err
	}
	return "", ai.Classify(err)
}

// record persists one exchange. Appends are single statements so concurrent
// exchanges from the same user are both kept, in whichever order they land.
func (s *TutorService) record(ctx context.Context, userID string, userTurn, aiTurn models.ChatTurn) error {
	sessions := s.store.ForUser(userID).ChatSessions
	existing, err := sessions.FindByUser(ctx, userID)
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}
	if err != nil {
		existing = nil
	}

	state := models.NextSessionState(existing, userTurn, aiTurn)
	switch state.Mode {
	case models.SessionCreate:
		err = sessions.Create(ctx, &models.ChatSession{UserID: userID, Messages: state.Turns})
		if apperr.IsConflict(err) {
			// Another exchange created the session first.
			err = sessions.AppendForUser(ctx, userID, state.Turns)
		}
	case models.SessionAppend:
		err = sessions.Append(ctx, state.ID, state.Turns[len(existing.Messages):])
	}
	if err != nil {
		s.logger.Error("tutor session write failed",
			zap.String("user_id", userID),
			zap.String("mode", state.Mode.String()),
			zap.Error(err),
		)
	}
	return err
}
