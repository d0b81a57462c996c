package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	h *Handle
}

func NewGroupRepository(h *Handle) *GroupRepository {
	return &GroupRepository{h: h}
}

// List returns every visible group, the admin group first.
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Order("is_admin_group DESC").Order("created_at ASC").Find(&groups).Error
	})
	if err != nil {
		return nil, translate(err, "group")
	}
	return groups, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).Take(&group).Error
	})
	if err != nil {
		return nil, translate(err, "group")
	}
	return &group, nil
}

func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Create(group).Error
	}), "group")
}
