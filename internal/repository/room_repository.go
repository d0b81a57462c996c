package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
)

type RoomRepository struct {
	h *Handle
}

func NewRoomRepository(h *Handle) *RoomRepository {
	return &RoomRepository{h: h}
}

func (r *RoomRepository) ListByGroup(ctx context.Context, groupID string) ([]models.GroupRoom, error) {
	rooms := []models.GroupRoom{}
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Where("group_id = ?", groupID).Order("room_name ASC").Find(&rooms).Error
	})
	if err != nil {
		return nil, translate(err, "room")
	}
	return rooms, nil
}
