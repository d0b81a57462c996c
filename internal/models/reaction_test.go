package models

import (
	"sort"
	"testing"
)

func sameSets(a, b Reactions) bool {
	if len(a) != len(b) {
		return false
	}
	for emoji, users := range a {
		other, ok := b[emoji]
		if !ok || len(other) != len(users) {
			return false
		}
		x := append([]string(nil), users...)
		y := append([]string(nil), other...)
		sort.Strings(x)
		sort.Strings(y)
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
	}
	return true
}

func TestApplyReaction(t *testing.T) {
	tests := []struct {
		name     string
		current  Reactions
		emoji    string
		userID   string
		expected Reactions
	}{
		{"Empty map adds emoji", Reactions{}, "👍", "u1", Reactions{"👍": {"u1"}}},
		{"Nil map adds emoji", nil, "👍", "u1", Reactions{"👍": {"u1"}}},
		{"Existing emoji adds user", Reactions{"👍": {"u1"}}, "👍", "u2", Reactions{"👍": {"u1", "u2"}}},
		{"Removes user", Reactions{"👍": {"u1", "u2"}}, "👍", "u1", Reactions{"👍": {"u2"}}},
		{"Removes empty emoji key", Reactions{"👍": {"u1"}, "🎉": {"u2"}}, "👍", "u1", Reactions{"🎉": {"u2"}}},
		{"Other emoji untouched", Reactions{"🎉": {"u1"}}, "👍", "u1", Reactions{"🎉": {"u1"}, "👍": {"u1"}}},
		{"Stale empty key treated as absent", Reactions{"👍": {}}, "👍", "u1", Reactions{"👍": {"u1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyReaction(tt.current, tt.emoji, tt.userID)
			if !sameSets(got, tt.expected) {
				t.Errorf("ApplyReaction() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestApplyReactionIsItsOwnInverse(t *testing.T) {
	states := []Reactions{
		{},
		{"👍": {"u1"}},
		{"👍": {"u2", "u3"}},
		{"👍": {"u1", "u2"}, "🔥": {"u1"}},
	}
	users := []string{"u1", "u2", "u4"}
	emojis := []string{"👍", "🔥", "😂"}

	for _, r := range states {
		for _, e := range emojis {
			for _, u := range users {
				twice := ApplyReaction(ApplyReaction(r, e, u), e, u)
				if !sameSets(twice, r) {
					t.Errorf("apply twice(%v, %s, %s) = %v, want original", r, e, u, twice)
				}
			}
		}
	}
}

func TestApplyReactionNeverLeavesEmptyKeys(t *testing.T) {
	r := Reactions{"👍": {"u1"}}
	for i := 0; i < 4; i++ {
		r = ApplyReaction(r, "👍", "u1")
		if users, ok := r["👍"]; ok {
			if len(users) == 0 {
				t.Fatalf("iteration %d: empty member list persisted", i)
			}
			if !r.Has("👍", "u1") {
				t.Fatalf("iteration %d: emoji present without reacting user", i)
			}
		}
	}
}

func TestApplyReactionDoesNotMutateInput(t *testing.T) {
	current := Reactions{"👍": {"u1", "u2"}}
	_ = ApplyReaction(current, "👍", "u1")
	_ = ApplyReaction(current, "🔥", "u3")

	if !sameSets(current, Reactions{"👍": {"u1", "u2"}}) {
		t.Errorf("input mutated: %v", current)
	}
}

func TestReactionsScanAndValue(t *testing.T) {
	var r Reactions
	if err := r.Scan([]byte(`{"👍":["u1"]}`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !r.Has("👍", "u1") {
		t.Errorf("Scan result = %v", r)
	}

	if err := r.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if r == nil || len(r) != 0 {
		t.Errorf("Scan(nil) = %v, want empty map", r)
	}

	v, err := Reactions(nil).Value()
	if err != nil || v != "{}" {
		t.Errorf("Value(nil) = %v, %v", v, err)
	}

	if err := r.Scan(42); err == nil {
		t.Errorf("expected error scanning int")
	}
}
