package service

import (
	"context"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/cache"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/metrics"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/validation"
	"go.uber.org/zap"
)

type GroupService struct {
	store    repository.Factory
	rooms    *cache.RoomCache
	presence *cache.Presence
	logger   *zap.Logger
}

// NewGroupService accepts nil caches; both are optional.
func NewGroupService(store repository.Factory, rooms *cache.RoomCache, presence *cache.Presence, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{store: store, rooms: rooms, presence: presence, logger: logger}
}

// Member is one entry of a group's member listing.
type Member struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

func (s *GroupService) List(ctx context.Context, userID string) ([]models.Group, error) {
	groups, err := s.store.ForUser(userID).Groups.List(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

func (s *GroupService) Get(ctx context.Context, userID, groupID string) (*models.Group, error) {
	if !validation.ValidateID(groupID) {
		return nil, apperr.Validation("Invalid group id")
	}
	return s.store.ForUser(userID).Groups.FindByID(ctx, groupID)
}

// Create stores a new group and makes its creator the first member.
func (s *GroupService) Create(ctx context.Context, userID, name, description string) (*models.Group, error) {
	name = validation.SanitizeText(name)
	description = validation.SanitizeText(description)
	if name == "" {
		return nil, apperr.Validation("Group name is required")
	}
	if !validation.ValidateName(name) {
		return nil, apperr.Validation("Group name is too long")
	}
	if !validation.ValidateDescription(description) {
		return nil, apperr.Validation("Group description is too long")
	}

	repos := s.store.ForUser(userID)
	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
	}
	if err := repos.Groups.Create(ctx, group); err != nil {
		return nil, err
	}
	if err := repos.Members.Add(ctx, group.ID, userID); err != nil && !apperr.IsConflict(err) {
		return nil, err
	}
	s.dropRooms(ctx, userID, group.ID)
	return group, nil
}

func (s *GroupService) Join(ctx context.Context, userID, groupID string) error {
	if !validation.ValidateID(groupID) {
		return apperr.Validation("Invalid group id")
	}
	if err := s.store.ForUser(userID).Members.Add(ctx, groupID, userID); err != nil {
		if apperr.IsConflict(err) {
			return apperr.Conflict("Already a member of this group", "", err)
		}
		return err
	}
	// A list cached before joining reflects what row-level policies hid then.
	s.dropRooms(ctx, userID, groupID)
	return nil
}

func (s *GroupService) dropRooms(ctx context.Context, userID, groupID string) {
	if err := s.rooms.Invalidate(ctx, userID, groupID); err != nil {
		s.logger.Warn("room cache invalidation failed", zap.String("group_id", groupID), zap.Error(err))
	}
}

// Leave removes the caller from groupID. The admin group can never be left.
func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	if !validation.ValidateID(groupID) {
		return apperr.Validation("Invalid group id")
	}
	repos := s.store.ForUser(userID)
	group, err := repos.Groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsAdminGroup {
		return apperr.Forbidden("You cannot leave the admin group.")
	}
	if err := repos.Members.Remove(ctx, groupID, userID); err != nil {
		return err
	}
	if err := s.rooms.InvalidateGroup(ctx, groupID); err != nil {
		s.logger.Warn("room cache invalidation failed", zap.String("group_id", groupID), zap.Error(err))
	}
	return nil
}

func (s *GroupService) ListRooms(ctx context.Context, userID, groupID string) ([]models.GroupRoom, error) {
	if !validation.ValidateID(groupID) {
		return nil, apperr.Validation("Invalid group id")
	}
	if rooms, ok := s.rooms.Get(ctx, userID, groupID); ok {
		return rooms, nil
	}

	rooms, err := s.store.ForUser(userID).Rooms.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []models.GroupRoom{}
	}
	if err := s.rooms.Set(ctx, userID, groupID, rooms); err != nil {
		s.logger.Warn("room cache write failed", zap.String("group_id", groupID), zap.Error(err))
	}
	return rooms, nil
}

func (s *GroupService) MyGroupIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.store.ForUser(userID).Members.GroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// GroupMembers lists the user ids of groupID. A store failure is logged and
// yields an empty list instead of an error, so aggregate views and realtime
// fan-out keep working.
func (s *GroupService) GroupMembers(ctx context.Context, groupID string) []string {
	ids, err := s.store.Admin().Members.UserIDsForGroup(ctx, groupID)
	if err != nil {
		s.logger.Warn("group member lookup failed",
			zap.String("group_id", groupID),
			zap.Error(err),
		)
		metrics.MembershipDegraded()
		return []string{}
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

// MembersWithPresence lists the members of a group the caller can see, each
// flagged with whether it currently holds a realtime connection.
func (s *GroupService) MembersWithPresence(ctx context.Context, userID, groupID string) ([]Member, error) {
	if _, err := s.Get(ctx, userID, groupID); err != nil {
		return nil, err
	}

	ids := s.GroupMembers(ctx, groupID)
	online, err := s.presence.OnlineAmong(ctx, ids)
	if err != nil {
		s.logger.Warn("presence lookup failed", zap.String("group_id", groupID), zap.Error(err))
	}

	members := make([]Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, Member{UserID: id, Online: online[id]})
	}
	return members, nil
}
