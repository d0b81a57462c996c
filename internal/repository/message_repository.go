package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	h *Handle
}

func NewMessageRepository(h *Handle) *MessageRepository {
	return &MessageRepository{h: h}
}

// ListByRoom returns up to limit messages of one room, oldest first, with the
// author's display name attached.
func (r *MessageRepository) ListByRoom(ctx context.Context, groupID, room string, limit int) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
			Where("group_id = ? AND room_name = ?", groupID, room).
			Order("created_at ASC").
			Limit(limit).
			Find(&messages).Error
	})
	if err != nil {
		return nil, translate(err, "message")
	}
	return messages, nil
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Omit("Author").Create(message).Error
	}), "message")
}

func (r *MessageRepository) FindReactionState(ctx context.Context, id int64) (*models.ReactionState, error) {
	var state models.ReactionState
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Table(models.Message{}.TableName()).
			Select("id", "group_id", "reactions").
			Where("id = ?", id).
			Take(&state).Error
	})
	if err != nil {
		return nil, translate(err, "message")
	}
	if state.Reactions == nil {
		state.Reactions = models.Reactions{}
	}
	return &state, nil
}

func (r *MessageRepository) CompareAndSwapReactions(ctx context.Context, id int64, expected, next models.Reactions) (bool, error) {
	var affected int64
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Message{}).
			Where("id = ? AND COALESCE(reactions, '{}'::jsonb) = ?::jsonb", id, expected).
			Update("reactions", next)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, translate(err, "message")
	}
	return affected == 1, nil
}

// UpdateReactions overwrites the map unconditionally (last write wins).
func (r *MessageRepository) UpdateReactions(ctx context.Context, id int64, next models.Reactions) error {
	var affected int64
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Message{}).Where("id = ?", id).Update("reactions", next)
		affected = res.RowsAffected
		return res.Error
	})
	if err == nil && affected == 0 {
		err = gorm.ErrRecordNotFound
	}
	return translate(err, "message")
}
