package service

// Realtime event types pushed to group members.
const (
	EventMessageCreated  = "message.created"
	EventMessageReaction = "message.reaction"
	EventMessageRead     = "message.read"
	EventTyping          = "typing"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Notifier delivers an event to whichever of userIDs are connected.
// Delivery is best effort and never blocks the caller on a slow client.
type Notifier interface {
	Notify(userIDs []string, event Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify([]string, Event) {}
