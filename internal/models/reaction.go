package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Reactions maps an emoji to the ids of the users who reacted with it.
// Member order is irrelevant; an emoji with no members is never stored.
type Reactions map[string][]string

// ReactionState is the result of a toggle: the message identity plus its new
// reaction map.
type ReactionState struct {
	ID        int64     `json:"id"`
	GroupID   string    `json:"group_id"`
	Reactions Reactions `json:"reactions"`
}

// ApplyReaction toggles userID's reaction with emoji and returns the next
// state. current is not modified.
func ApplyReaction(current Reactions, emoji, userID string) Reactions {
	next := current.Clone()

	users, ok := next[emoji]
	if !ok {
		next[emoji] = []string{userID}
		return next
	}

	for i, uid := range users {
		if uid == userID {
			remaining := make([]string, 0, len(users)-1)
			remaining = append(remaining, users[:i]...)
			remaining = append(remaining, users[i+1:]...)
			if len(remaining) == 0 {
				delete(next, emoji)
			} else {
				next[emoji] = remaining
			}
			return next
		}
	}

	next[emoji] = append(users, userID)
	return next
}

// Clone returns a deep copy, dropping emoji keys with empty member lists.
func (r Reactions) Clone() Reactions {
	out := make(Reactions, len(r))
	for emoji, users := range r {
		if len(users) == 0 {
			continue
		}
		out[emoji] = append([]string(nil), users...)
	}
	return out
}

// Has reports whether userID reacted with emoji.
func (r Reactions) Has(emoji, userID string) bool {
	for _, uid := range r[emoji] {
		if uid == userID {
			return true
		}
	}
	return false
}

func (r Reactions) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Reactions) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = Reactions{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("reactions: unsupported scan type %T", src)
	}
	out := Reactions{}
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("reactions: %w", err)
		}
	}
	*r = out
	return nil
}
