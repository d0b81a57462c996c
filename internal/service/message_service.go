package service

import (
	"context"
	"strings"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/metrics"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/validation"
	"go.uber.org/zap"
)

const (
	DefaultMessageLimit = 100
	DefaultMaxLength    = 4000
	defaultCASAttempts  = 5
)

// MemberLister resolves the recipients of a group event.
type MemberLister interface {
	GroupMembers(ctx context.Context, groupID string) []string
}

type MessageOptions struct {
	MaxLength int
	// ReactionCAS selects the compare-and-swap toggle. When false the toggle
	// is a plain read-modify-write where the last write wins.
	ReactionCAS bool
	CASAttempts int
}

type MessageService struct {
	store    repository.Factory
	members  MemberLister
	notifier Notifier
	logger   *zap.Logger
	opts     MessageOptions
}

func NewMessageService(store repository.Factory, members MemberLister, notifier Notifier, logger *zap.Logger, opts MessageOptions) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.CASAttempts <= 0 {
		opts.CASAttempts = defaultCASAttempts
	}
	return &MessageService{
		store:    store,
		members:  members,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

type CreateMessageInput struct {
	GroupID  string
	RoomName string
	Content  string
	FileURL  *string
}

// List returns the latest messages of a room, oldest first.
func (s *MessageService) List(ctx context.Context, userID, groupID, room string, limit int) ([]models.Message, error) {
	if !validation.ValidateID(groupID) {
		return nil, apperr.Validation("Invalid group id")
	}
	room, err := roomOrDefault(room)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > DefaultMessageLimit {
		limit = DefaultMessageLimit
	}
	return s.store.ForUser(userID).Messages.ListByRoom(ctx, groupID, room, limit)
}

// Create posts a message on behalf of userID, who must be a member of the
// group.
func (s *MessageService) Create(ctx context.Context, userID string, in CreateMessageInput) (*models.Message, error) {
	if !validation.ValidateID(in.GroupID) {
		return nil, apperr.Validation("Invalid group id")
	}
	room, err := roomOrDefault(in.RoomName)
	if err != nil {
		return nil, err
	}

	content := validation.SanitizeText(in.Content)
	var fileURL *string
	if in.FileURL != nil && strings.TrimSpace(*in.FileURL) != "" {
		u := strings.TrimSpace(*in.FileURL)
		fileURL = &u
	}
	if content == "" && fileURL == nil {
		return nil, apperr.Validation("Message content or file is required")
	}
	if content != "" && !validation.ValidateLength(content, s.opts.MaxLength) {
		return nil, apperr.Validation("Message is too long")
	}

	member, err := s.store.ForUser(userID).Members.IsMember(ctx, in.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Forbidden("You are not a member of this group")
	}

	msg := &models.Message{
		GroupID:   in.GroupID,
		RoomName:  room,
		UserID:    userID,
		Content:   content,
		FileURL:   fileURL,
		Reactions: models.Reactions{},
	}
	if err := s.store.Admin().Messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.notify(ctx, msg.GroupID, Event{Type: EventMessageCreated, Data: msg})
	return msg, nil
}

// ToggleReaction adds or removes userID's emoji reaction on a message and
// returns the resulting state.
func (s *MessageService) ToggleReaction(ctx context.Context, messageID int64, userID, emoji string) (*models.ReactionState, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, apperr.Validation("Emoji is required")
	}
	if !validation.ValidateEmoji(emoji) {
		return nil, apperr.Validation("Invalid emoji")
	}

	messages := s.store.Admin().Messages
	current, err := messages.FindReactionState(ctx, messageID)
	if err != nil {
		return nil, err
	}
	member, err := s.store.ForUser(userID).Members.IsMember(ctx, current.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Forbidden("You are not a member of this group")
	}

	var state *models.ReactionState
	if s.opts.ReactionCAS {
		state, err = s.toggleCAS(ctx, messages, current, emoji, userID)
		metrics.ReactionToggled("cas")
	} else {
		state, err = s.toggleOverwrite(ctx, messages, current, emoji, userID)
		metrics.ReactionToggled("overwrite")
	}
	if err != nil {
		return nil, err
	}

	s.notify(ctx, state.GroupID, Event{Type: EventMessageReaction, Data: state})
	return state, nil
}

func (s *MessageService) toggleCAS(ctx context.Context, messages repository.MessageRepositoryInterface, current *models.ReactionState, emoji, userID string) (*models.ReactionState, error) {
	for attempt := 0; attempt < s.opts.CASAttempts; attempt++ {
		if attempt > 0 {
			metrics.ReactionRetried()
			var err error
			current, err = messages.FindReactionState(ctx, current.ID)
			if err != nil {
				return nil, err
			}
		}

		next := models.ApplyReaction(current.Reactions, emoji, userID)
		swapped, err := messages.CompareAndSwapReactions(ctx, current.ID, current.Reactions, next)
		if err != nil {
			return nil, err
		}
		if swapped {
			return &models.ReactionState{ID: current.ID, GroupID: current.GroupID, Reactions: next}, nil
		}
	}

	s.logger.Warn("reaction toggle gave up after concurrent updates",
		zap.Int64("message_id", current.ID),
		zap.Int("attempts", s.opts.CASAttempts),
	)
	return nil, apperr.Conflict("Message reactions changed concurrently, please retry", "", nil)
}

func (s *MessageService) toggleOverwrite(ctx context.Context, messages repository.MessageRepositoryInterface, current *models.ReactionState, emoji, userID string) (*models.ReactionState, error) {
	next := models.ApplyReaction(current.Reactions, emoji, userID)
	if err := messages.UpdateReactions(ctx, current.ID, next); err != nil {
		return nil, err
	}
	return &models.ReactionState{ID: current.ID, GroupID: current.GroupID, Reactions: next}, nil
}

// AddReadReceipt marks a message as read. Marking it again is a no-op.
func (s *MessageService) AddReadReceipt(ctx context.Context, messageID int64, userID string) error {
	if messageID <= 0 {
		return apperr.Validation("Invalid message id")
	}
	if err := s.store.ForUser(userID).Receipts.Upsert(ctx, messageID, userID); err != nil {
		return err
	}

	state, err := s.store.Admin().Messages.FindReactionState(ctx, messageID)
	if err != nil {
		s.logger.Debug("read receipt stored without fan-out", zap.Int64("message_id", messageID), zap.Error(err))
		return nil
	}
	s.notify(ctx, state.GroupID, Event{
		Type: EventMessageRead,
		Data: models.ReadReceipt{MessageID: messageID, UserID: userID},
	})
	return nil
}

func (s *MessageService) notify(ctx context.Context, groupID string, event Event) {
	if s.members == nil {
		return
	}
	recipients := s.members.GroupMembers(ctx, groupID)
	if len(recipients) == 0 {
		return
	}
	s.notifier.Notify(recipients, event)
}

func roomOrDefault(room string) (string, error) {
	room = validation.NormalizeRoomName(room)
	if room == "" {
		return models.DefaultRoom, nil
	}
	if !validation.ValidateRoomName(room) {
		return "", apperr.Validation("Invalid room name")
	}
	return room, nil
}
