package service

import (
	"sync"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/testutil"
)

const (
	alice = "11111111-1111-1111-1111-111111111111"
	bob   = "22222222-2222-2222-2222-222222222222"
	carol = "33333333-3333-3333-3333-333333333333"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	to     [][]string
}

func (n *recordingNotifier) Notify(userIDs []string, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.to = append(n.to, append([]string(nil), userIDs...))
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

func newStore() *testutil.MemoryStore {
	return testutil.NewMemoryStore()
}
