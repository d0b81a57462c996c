package models

import (
	"reflect"
	"testing"
	"time"
)

func turn(content string, sender Sender) ChatTurn {
	return ChatTurn{Content: content, Sender: sender, CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func TestNextSessionStateCreate(t *testing.T) {
	u := turn("hello", SenderUser)
	a := turn("hi there", SenderAI)

	state := NextSessionState(nil, u, a)

	if state.Mode != SessionCreate {
		t.Errorf("Mode = %v, want create", state.Mode)
	}
	if state.ID != "" {
		t.Errorf("ID = %q, want empty", state.ID)
	}
	if !reflect.DeepEqual(state.Turns, []ChatTurn{u, a}) {
		t.Errorf("Turns = %v", state.Turns)
	}
}

func TestNextSessionStateAppend(t *testing.T) {
	prior := ChatTurns{turn("q1", SenderUser), turn("a1", SenderAI)}
	existing := &ChatSession{ID: "s1", UserID: "u1", Messages: prior}
	u := turn("q2", SenderUser)
	a := turn("a2", SenderAI)

	state := NextSessionState(existing, u, a)

	if state.Mode != SessionAppend {
		t.Errorf("Mode = %v, want append", state.Mode)
	}
	if state.ID != "s1" {
		t.Errorf("ID = %q, want s1", state.ID)
	}
	want := []ChatTurn{prior[0], prior[1], u, a}
	if !reflect.DeepEqual(state.Turns, want) {
		t.Errorf("Turns = %v, want %v", state.Turns, want)
	}
	if len(existing.Messages) != 2 {
		t.Errorf("existing log mutated: %d turns", len(existing.Messages))
	}
}

func TestNextSessionStateEmptyExisting(t *testing.T) {
	existing := &ChatSession{ID: "s1"}
	state := NextSessionState(existing, turn("q", SenderUser), turn("a", SenderAI))
	if state.Mode != SessionAppend || len(state.Turns) != 2 {
		t.Errorf("state = %+v", state)
	}
}

func TestChatTurnsScan(t *testing.T) {
	var turns ChatTurns
	raw := `[{"content":"hello","created_at":"2025-03-01T10:00:00Z","sender":"user"}]`
	if err := turns.Scan([]byte(raw)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(turns) != 1 || turns[0].Sender != SenderUser || turns[0].Content != "hello" {
		t.Errorf("Scan = %+v", turns)
	}

	if err := turns.Scan("null"); err != nil || len(turns) != 0 {
		t.Errorf("Scan(null) = %v, %v", turns, err)
	}
}

func TestSessionWriteModeString(t *testing.T) {
	if SessionCreate.String() != "create" || SessionAppend.String() != "append" {
		t.Errorf("unexpected mode names")
	}
}
