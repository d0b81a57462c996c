package ws

import (
	"context"
	"errors"
	"testing"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typingGroup = "66666666-6666-6666-6666-666666666666"

type recordingReceipts struct {
	ids   []int64
	users []string
	err   error
}

func (r *recordingReceipts) AddReadReceipt(_ context.Context, messageID int64, userID string) error {
	if r.err != nil {
		return r.err
	}
	r.ids = append(r.ids, messageID)
	r.users = append(r.users, userID)
	return nil
}

type staticMembers map[string][]string

func (m staticMembers) GroupMembers(_ context.Context, groupID string) []string {
	return m[groupID]
}

func TestTypeRegistry(t *testing.T) {
	registry := GetTypeRegistry()
	for _, name := range []string{"typing", "read", "ping", "pong"} {
		_, ok := registry[name]
		assert.True(t, ok, "type %q not registered", name)
	}
}

func TestDeserialize(t *testing.T) {
	msg, err := Deserialize([]byte(`{"type":"typing","payload":{"group_id":"g1","room_name":"general","is_typing":true}}`))
	require.NoError(t, err)
	typing, ok := msg.(*MessageTyping)
	require.True(t, ok)
	assert.Equal(t, "g1", typing.GroupID)
	assert.True(t, typing.IsTyping)

	msg, err = Deserialize([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.GetType())

	_, err = Deserialize([]byte(`{"type":"unknown"}`))
	assert.Error(t, err)

	_, err = Deserialize([]byte(`not json`))
	assert.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	data, err := Serialize(&MessageTyping{GroupID: typingGroup, IsTyping: true})
	require.NoError(t, err)
	msg, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, typingGroup, msg.(*MessageTyping).GroupID)
}

func TestCompression(t *testing.T) {
	payload := []byte(`{"type":"message.created","data":"hello hello hello hello"}`)
	compressed, err := CompressMessage(payload)
	require.NoError(t, err)
	out, err := DecompressMessage(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = DecompressMessage([]byte("plain"))
	assert.Error(t, err)
}

func TestTypingRelaysToOtherMembers(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	ctx := context.Background()

	aliceConn, bobConn, carolConn := newFakeConn(), newFakeConn(), newFakeConn()
	alice := hub.Register(ctx, "alice", aliceConn, false)
	hub.Register(ctx, "bob", bobConn, false)
	hub.Register(ctx, "carol", carolConn, false)

	mc := &MessageContext{
		Ctx:     ctx,
		UserID:  "alice",
		Client:  alice,
		Hub:     hub,
		Members: staticMembers{typingGroup: {"alice", "bob"}},
	}
	require.NoError(t, (&MessageTyping{GroupID: typingGroup, IsTyping: true}).Process(mc))

	ev := decodeEvent(t, bobConn.next(t))
	assert.Equal(t, service.EventTyping, ev["type"])
	data := ev["data"].(map[string]any)
	assert.Equal(t, "alice", data["user_id"])
	assert.Equal(t, "general", data["room_name"])
	aliceConn.none(t)
	carolConn.none(t)

	mc.UserID = "carol"
	assert.ErrorIs(t, (&MessageTyping{GroupID: typingGroup}).Process(mc), errNotMember)
	assert.Error(t, (&MessageTyping{GroupID: "bad"}).Process(mc))
}

func TestPingAnswersPong(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	conn := newFakeConn()
	client := hub.Register(context.Background(), "alice", conn, false)

	mc := &MessageContext{Ctx: context.Background(), UserID: "alice", Client: client, Hub: hub}
	require.NoError(t, (&MessagePing{}).Process(mc))
	assert.Equal(t, "pong", decodeEvent(t, conn.next(t))["type"])
}

func TestReadRecordsReceipt(t *testing.T) {
	receipts := &recordingReceipts{}
	mc := &MessageContext{Ctx: context.Background(), UserID: "bob", Receipts: receipts}

	msg, err := Deserialize([]byte(`{"type":"read","payload":{"message_id":42}}`))
	require.NoError(t, err)
	require.NoError(t, msg.Process(mc))
	assert.Equal(t, []int64{42}, receipts.ids)
	assert.Equal(t, []string{"bob"}, receipts.users)

	receipts.err = errors.New("store down")
	assert.Error(t, msg.Process(mc))

	mc.Receipts = nil
	assert.Error(t, msg.Process(mc))
}
