package ws

import (
	"errors"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/validation"
)

var errNotMember = errors.New("not a member of this group")

// MessageTyping is relayed to the other members of the group.
type MessageTyping struct {
	GroupID  string `json:"group_id"`
	RoomName string `json:"room_name"`
	IsTyping bool   `json:"is_typing"`
}

type typingEvent struct {
	GroupID  string `json:"group_id"`
	RoomName string `json:"room_name"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

func (msg *MessageTyping) GetType() string {
	return service.EventTyping
}

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	if !validation.ValidateID(msg.GroupID) {
		return errors.New("invalid group id")
	}
	room := validation.NormalizeRoomName(msg.RoomName)
	if room == "" {
		room = models.DefaultRoom
	}

	members := ctx.Members.GroupMembers(ctx.Ctx, msg.GroupID)
	recipients := make([]string, 0, len(members))
	isMember := false
	for _, id := range members {
		if id == ctx.UserID {
			isMember = true
			continue
		}
		recipients = append(recipients, id)
	}
	if !isMember {
		return errNotMember
	}

	ctx.Hub.Notify(recipients, service.Event{
		Type: service.EventTyping,
		Data: typingEvent{
			GroupID:  msg.GroupID,
			RoomName: room,
			UserID:   ctx.UserID,
			IsTyping: msg.IsTyping,
		},
	})
	return nil
}
