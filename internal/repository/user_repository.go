package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	h *Handle
}

func NewUserRepository(h *Handle) *UserRepository {
	return &UserRepository{h: h}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Preload("EducationLevel").Where("id = ?", id).Take(&user).Error
	})
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// CreateIfMissing inserts the profile row unless one with the same id exists.
func (r *UserRepository) CreateIfMissing(ctx context.Context, user *models.User) error {
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = models.DefaultSubscriptionTier
	}
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Omit("EducationLevel").
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
			Create(user).Error
	}), "user")
}
