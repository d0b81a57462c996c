package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// MaxInboundFrame bounds a decoded client frame.
const MaxInboundFrame = 64 * 1024

// MemberLister resolves who belongs to a group.
type MemberLister interface {
	GroupMembers(ctx context.Context, groupID string) []string
}

// ReceiptWriter records that a user has read a message.
type ReceiptWriter interface {
	AddReadReceipt(ctx context.Context, messageID int64, userID string) error
}

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	Ctx      context.Context
	UserID   string
	Client   *Client
	Hub      *Hub
	Members  MemberLister
	Receipts ReceiptWriter
}

// Message interface for all WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when message processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func ToJson(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func FromJson(jsonBytes []byte, msg Message) error {
	return json.Unmarshal(jsonBytes, msg)
}

func CreateMessage(msgType string, typeRegistry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := typeRegistry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}

// SendError queues an error frame for the client
func SendError(ctx *MessageContext, code, message, details string) error {
	return ctx.Hub.SendTo(ctx.Client, ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
}
