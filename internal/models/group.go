package models

import (
	"time"
)

// Group is a study group. Exactly one group per deployment carries
// IsAdminGroup; members can never leave it through the ordinary leave path.
type Group struct {
	ID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Description  string    `gorm:"size:255" json:"description"`
	CreatedBy    string    `gorm:"type:uuid;not null" json:"created_by"`
	IsAdminGroup bool      `gorm:"not null;default:false" json:"is_admin_group"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Group) TableName() string {
	return "study_groups"
}

type GroupMember struct {
	GroupID string `gorm:"type:uuid;primaryKey" json:"group_id"`
	UserID  string `gorm:"type:uuid;primaryKey" json:"user_id"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupRoom is a named channel inside a group ("general", "primary", ...).
type GroupRoom struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	GroupID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_room" json:"group_id"`
	RoomName  string    `gorm:"size:64;not null;uniqueIndex:idx_group_room" json:"room_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (GroupRoom) TableName() string {
	return "group_rooms"
}
