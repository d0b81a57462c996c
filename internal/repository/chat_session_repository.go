package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
)

type ChatSessionRepository struct {
	h *Handle
}

func NewChatSessionRepository(h *Handle) *ChatSessionRepository {
	return &ChatSessionRepository{h: h}
}

func (r *ChatSessionRepository) FindByUser(ctx context.Context, userID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Take(&session).Error
	})
	if err != nil {
		return nil, translate(err, "chat session")
	}
	return &session, nil
}

// Create fails with a conflict when the user already has a session.
func (r *ChatSessionRepository) Create(ctx context.Context, session *models.ChatSession) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Create(session).Error
	}), "chat session")
}

// Append concatenates turns to the stored log in one statement, so concurrent
// appends never drop each other.
func (r *ChatSessionRepository) Append(ctx context.Context, id string, turns []models.ChatTurn) error {
	return r.append(ctx, "id = ?", id, turns)
}

func (r *ChatSessionRepository) AppendForUser(ctx context.Context, userID string, turns []models.ChatTurn) error {
	return r.append(ctx, "user_id = ?", userID, turns)
}

func (r *ChatSessionRepository) append(ctx context.Context, where string, arg string, turns []models.ChatTurn) error {
	var affected int64
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.ChatSession{}).Where(where, arg).Updates(map[string]interface{}{
			"messages":   gorm.Expr("COALESCE(messages, '[]'::jsonb) || ?::jsonb", models.ChatTurns(turns)),
			"updated_at": gorm.Expr("NOW()"),
		})
		affected = res.RowsAffected
		return res.Error
	})
	if err == nil && affected == 0 {
		err = gorm.ErrRecordNotFound
	}
	return translate(err, "chat session")
}
