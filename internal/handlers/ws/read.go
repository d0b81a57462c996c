package ws

import "errors"

// MessageRead marks a message as read without a separate HTTP round trip.
// The receipt fan-out to the group happens in the message service.
type MessageRead struct {
	MessageID int64 `json:"message_id"`
}

func (msg *MessageRead) GetType() string {
	return "read"
}

func (msg *MessageRead) Process(ctx *MessageContext) error {
	if ctx.Receipts == nil {
		return errors.New("read receipts unavailable")
	}
	return ctx.Receipts.AddReadReceipt(ctx.Ctx, msg.MessageID, ctx.UserID)
}
