package repository

import "gorm.io/gorm"

// Repositories bundles every repository bound to the same handle.
type Repositories struct {
	Groups          GroupRepositoryInterface
	Members         MemberRepositoryInterface
	Rooms           RoomRepositoryInterface
	Messages        MessageRepositoryInterface
	Receipts        ReceiptRepositoryInterface
	EducationLevels EducationLevelRepositoryInterface
	ChatSessions    ChatSessionRepositoryInterface
	Users           UserRepositoryInterface
}

func NewRepositories(h *Handle) *Repositories {
	return &Repositories{
		Groups:          NewGroupRepository(h),
		Members:         NewMemberRepository(h),
		Rooms:           NewRoomRepository(h),
		Messages:        NewMessageRepository(h),
		Receipts:        NewReceiptRepository(h),
		EducationLevels: NewEducationLevelRepository(h),
		ChatSessions:    NewChatSessionRepository(h),
		Users:           NewUserRepository(h),
	}
}

// Factory hands out repositories for the two store capabilities.
type Factory interface {
	Admin() *Repositories
	ForUser(userID string) *Repositories
}

type StoreFactory struct {
	db         *gorm.DB
	scopedRole string
	admin      *Repositories
}

// NewFactory is called once at start; the admin bundle is shared for the
// lifetime of the process.
func NewFactory(db *gorm.DB, scopedRole string) *StoreFactory {
	return &StoreFactory{
		db:         db,
		scopedRole: scopedRole,
		admin:      NewRepositories(NewAdminHandle(db)),
	}
}

func (f *StoreFactory) Admin() *Repositories {
	return f.admin
}

func (f *StoreFactory) ForUser(userID string) *Repositories {
	return NewRepositories(NewUserHandle(f.db, userID, f.scopedRole))
}
