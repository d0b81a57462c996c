package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepository struct {
	h *Handle
}

func NewReceiptRepository(h *Handle) *ReceiptRepository {
	return &ReceiptRepository{h: h}
}

// Upsert records that userID read messageID. Repeating it changes nothing.
func (r *ReceiptRepository) Upsert(ctx context.Context, messageID int64, userID string) error {
	return translate(r.h.Run(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ReadReceipt{MessageID: messageID, UserID: userID}).Error
	}), "read receipt")
}
