package models

import "strings"

// EducationLevel is written once by its owner; only the administrative path
// may replace it afterwards.
type EducationLevel struct {
	UserID string  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Level  *string `gorm:"size:50" json:"level"`
}

func (EducationLevel) TableName() string {
	return "user_education_level"
}

// CanWriteEducationLevel reports whether an ordinary user write is allowed
// given the currently stored row (nil when absent).
func CanWriteEducationLevel(existing *EducationLevel) bool {
	if existing == nil || existing.Level == nil {
		return true
	}
	return strings.TrimSpace(*existing.Level) == ""
}
