package models

import (
	"time"
)

const DefaultRoom = "general"

type Message struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	GroupID   string    `gorm:"type:uuid;not null;index:idx_group_room_created" json:"group_id"`
	RoomName  string    `gorm:"size:64;not null;default:general;index:idx_group_room_created" json:"room_name"`
	UserID    string    `gorm:"type:uuid;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	FileURL   *string   `gorm:"type:text" json:"file_url"`
	Reactions Reactions `gorm:"type:jsonb;not null;default:'{}'" json:"reactions"`
	CreatedAt time.Time `gorm:"index:idx_group_room_created" json:"created_at"`

	Author *Author `gorm:"foreignKey:UserID" json:"users,omitempty"`
}

func (Message) TableName() string {
	return "group_messages"
}

// Author is the slice of a user profile joined onto listed messages.
type Author struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

func (Author) TableName() string {
	return "users"
}

// ReadReceipt marks a message as read by a user. Writing it twice is a no-op.
type ReadReceipt struct {
	MessageID int64  `gorm:"primaryKey" json:"message_id"`
	UserID    string `gorm:"type:uuid;primaryKey" json:"user_id"`
}

func (ReadReceipt) TableName() string {
	return "group_read_receipts"
}
