package repository

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
)

// GroupRepositoryInterface defines the contract for study group operations
type GroupRepositoryInterface interface {
	List(ctx context.Context) ([]models.Group, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
}

// MemberRepositoryInterface defines the contract for group membership operations
type MemberRepositoryInterface interface {
	Add(ctx context.Context, groupID, userID string) error
	Remove(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	GroupIDsForUser(ctx context.Context, userID string) ([]string, error)
	UserIDsForGroup(ctx context.Context, groupID string) ([]string, error)
}

// RoomRepositoryInterface defines the contract for group room operations
type RoomRepositoryInterface interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.GroupRoom, error)
}

// MessageRepositoryInterface defines the contract for group message operations
type MessageRepositoryInterface interface {
	ListByRoom(ctx context.Context, groupID, room string, limit int) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	FindReactionState(ctx context.Context, id int64) (*models.ReactionState, error)
	// CompareAndSwapReactions writes next only if the stored map still equals
	// expected. It reports whether the write happened.
	CompareAndSwapReactions(ctx context.Context, id int64, expected, next models.Reactions) (bool, error)
	UpdateReactions(ctx context.Context, id int64, next models.Reactions) error
}

// ReceiptRepositoryInterface defines the contract for read receipt operations
type ReceiptRepositoryInterface interface {
	Upsert(ctx context.Context, messageID int64, userID string) error
}

// EducationLevelRepositoryInterface defines the contract for education level operations
type EducationLevelRepositoryInterface interface {
	Get(ctx context.Context, userID string) (*models.EducationLevel, error)
	// InsertIfUnset writes level unless the user already has a non-empty
	// one, and reports whether it wrote.
	InsertIfUnset(ctx context.Context, level *models.EducationLevel) (bool, error)
	Upsert(ctx context.Context, level *models.EducationLevel) error
}

// ChatSessionRepositoryInterface defines the contract for AI tutor session operations
type ChatSessionRepositoryInterface interface {
	FindByUser(ctx context.Context, userID string) (*models.ChatSession, error)
	Create(ctx context.Context, session *models.ChatSession) error
	Append(ctx context.Context, id string, turns []models.ChatTurn) error
	AppendForUser(ctx context.Context, userID string, turns []models.ChatTurn) error
}

// UserRepositoryInterface defines the contract for profile operations
type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateIfMissing(ctx context.Context, user *models.User) error
}
