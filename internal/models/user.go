package models

import (
	"time"
)

const DefaultSubscriptionTier = "free"

// User is the public profile row kept alongside the auth provider's user.
type User struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string    `gorm:"not null" json:"email"`
	Name             string    `json:"name"`
	SubscriptionTier string    `gorm:"size:20;default:free" json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	EducationLevel *EducationLevel `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Profile is the enriched view of the current user.
type Profile struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	CreatedAt        time.Time  `json:"created_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at"`
	SubscriptionTier string     `json:"subscription_tier"`
	EducationLevel   *string    `json:"education_level"`
	IsAdmin          bool       `json:"is_admin"`
}

// UserSummary is what sign-up and sign-in return alongside the session token.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
