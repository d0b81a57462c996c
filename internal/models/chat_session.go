package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type ChatTurn struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sender    Sender    `json:"sender"`
}

// ChatTurns is stored as a jsonb array, oldest first.
type ChatTurns []ChatTurn

func (t ChatTurns) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *ChatTurns) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = ChatTurns{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("chat turns: unsupported scan type %T", src)
	}
	out := ChatTurns{}
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("chat turns: %w", err)
		}
	}
	*t = out
	return nil
}

// ChatSession is the AI tutor log of one user. The log only grows.
type ChatSession struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Messages  ChatTurns `gorm:"type:jsonb;not null;default:'[]'" json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

type SessionWriteMode int

const (
	SessionCreate SessionWriteMode = iota
	SessionAppend
)

func (m SessionWriteMode) String() string {
	if m == SessionAppend {
		return "append"
	}
	return "create"
}

// SessionState is the write a new exchange requires.
type SessionState struct {
	Mode  SessionWriteMode
	ID    string
	Turns []ChatTurn
}

// NextSessionState computes the log after appending one user/ai exchange to
// existing (nil when the user has no session yet).
func NextSessionState(existing *ChatSession, userTurn, aiTurn ChatTurn) SessionState {
	if existing == nil {
		return SessionState{
			Mode:  SessionCreate,
			Turns: []ChatTurn{userTurn, aiTurn},
		}
	}

	turns := make([]ChatTurn, 0, len(existing.Messages)+2)
	turns = append(turns, existing.Messages...)
	turns = append(turns, userTurn, aiTurn)
	return SessionState{
		Mode:  SessionAppend,
		ID:    existing.ID,
		Turns: turns,
	}
}
