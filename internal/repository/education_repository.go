package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EducationLevelRepository struct {
	h *Handle
}

func NewEducationLevelRepository(h *Handle) *EducationLevelRepository {
	return &EducationLevelRepository{h: h}
}

func (r *EducationLevelRepository) Get(ctx context.Context, userID string) (*models.EducationLevel, error) {
	var level models.EducationLevel
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Take(&level).Error
	})
	if err != nil {
		return nil, translate(err, "education level")
	}
	return &level, nil
}

// InsertIfUnset is a single conditional upsert: a new row is inserted, an
// existing row is only overwritten while its level is null or blank.
func (r *EducationLevelRepository) InsertIfUnset(ctx context.Context, level *models.EducationLevel) (bool, error) {
	var affected int64
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "user_education_level.level IS NULL OR btrim(user_education_level.level) = ''"},
			}},
		}).Create(level)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, translate(err, "education level")
	}
	return affected > 0, nil
}

func (r *EducationLevelRepository) Upsert(ctx context.Context, level *models.EducationLevel) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level"}),
		}).Create(level).Error
	}), "education level")
}
