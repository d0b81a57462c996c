package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
)

type MemberRepository struct {
	h *Handle
}

func NewMemberRepository(h *Handle) *MemberRepository {
	return &MemberRepository{h: h}
}

// Add inserts the membership; joining twice is a conflict.
func (r *MemberRepository) Add(ctx context.Context, groupID, userID string) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error
	}), "membership")
}

func (r *MemberRepository) Remove(ctx context.Context, groupID, userID string) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{}).Error
	}), "membership")
}

func (r *MemberRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Count(&count).Error
	})
	if err != nil {
		return false, translate(err, "membership")
	}
	return count > 0, nil
}

func (r *MemberRepository) GroupIDsForUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.GroupMember{}).Where("user_id = ?", userID).Pluck("group_id", &ids).Error
	})
	if err != nil {
		return nil, translate(err, "membership")
	}
	return ids, nil
}

func (r *MemberRepository) UserIDsForGroup(ctx context.Context, groupID string) ([]string, error) {
	ids := []string{}
	err := r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	})
	if err != nil {
		return nil, translate(err, "membership")
	}
	return ids, nil
}
