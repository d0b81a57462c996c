package service

import (
	"context"
	"strings"
	"testing"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	store    *testutil.MemoryStore
	notifier *recordingNotifier
	svc      *MessageService
	group    *models.Group
}

func newMessageFixture(opts MessageOptions) *messageFixture {
	store := newStore()
	notifier := &recordingNotifier{}
	groups := NewGroupService(store, nil, nil, nil)
	return &messageFixture{
		store:    store,
		notifier: notifier,
		svc:      NewMessageService(store, groups, notifier, nil, opts),
		group:    store.AddGroup("Maths", false, alice, bob),
	}
}

func TestMessageService_Create(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	ctx := context.Background()

	msg, err := f.svc.Create(ctx, alice, CreateMessageInput{
		GroupID: f.group.ID,
		Content: "  <i>hello</i> everyone ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello everyone", msg.Content)
	assert.Equal(t, models.DefaultRoom, msg.RoomName)
	assert.Equal(t, alice, msg.UserID)
	assert.NotZero(t, msg.ID)

	assert.Equal(t, []string{alice}, f.store.CallsTo("Members.IsMember"))
	assert.Equal(t, []string{testutil.AdminScope}, f.store.CallsTo("Messages.Create"))
	assert.Equal(t, []string{EventMessageCreated}, f.notifier.types())
	assert.Equal(t, []string{alice, bob}, f.notifier.to[0])
}

func TestMessageService_CreateWithFileOnly(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	url := "https://cdn.example.com/api/media/attachments/a.jpg"

	msg, err := f.svc.Create(context.Background(), bob, CreateMessageInput{
		GroupID:  f.group.ID,
		RoomName: "primary",
		FileURL:  &url,
	})
	require.NoError(t, err)
	assert.Equal(t, "", msg.Content)
	assert.Equal(t, "primary", msg.RoomName)
	require.NotNil(t, msg.FileURL)
	assert.Equal(t, url, *msg.FileURL)
}

func TestMessageService_CreateRejects(t *testing.T) {
	f := newMessageFixture(MessageOptions{MaxLength: 10})
	blank := "  "
	tests := []struct {
		name  string
		user  string
		input CreateMessageInput
		want  error
	}{
		{"No content or file", alice, CreateMessageInput{GroupID: f.group.ID, Content: " ", FileURL: &blank}, apperr.ErrValidation},
		{"Too long", alice, CreateMessageInput{GroupID: f.group.ID, Content: strings.Repeat("a", 11)}, apperr.ErrValidation},
		{"Bad room", alice, CreateMessageInput{GroupID: f.group.ID, RoomName: "no/slashes", Content: "hi"}, apperr.ErrValidation},
		{"Bad group id", alice, CreateMessageInput{GroupID: "g1", Content: "hi"}, apperr.ErrValidation},
		{"Not a member", carol, CreateMessageInput{GroupID: f.group.ID, Content: "hi"}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.user, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.CallsTo("Messages.Create"))
	assert.Empty(t, f.notifier.types())
}

func TestMessageService_ListClampsLimit(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	for i := 0; i < DefaultMessageLimit+5; i++ {
		f.store.AddMessage(f.group.ID, alice, "m", nil)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultMessageLimit},
		{-1, DefaultMessageLimit},
		{10, 10},
		{500, DefaultMessageLimit},
	}
	for _, tt := range tests {
		msgs, err := f.svc.List(context.Background(), alice, f.group.ID, "", tt.limit)
		require.NoError(t, err)
		assert.Len(t, msgs, tt.want, "limit %d", tt.limit)
	}
}

func TestMessageService_ListOrderAndAuthor(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	f.store.Users[alice] = &models.User{ID: alice, Name: "Alice"}
	first := f.store.AddMessage(f.group.ID, alice, "first", nil)
	second := f.store.AddMessage(f.group.ID, bob, "second", nil)

	msgs, err := f.svc.List(context.Background(), bob, f.group.ID, "general", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first, msgs[0].ID)
	assert.Equal(t, second, msgs[1].ID)
	require.NotNil(t, msgs[0].Author)
	assert.Equal(t, "Alice", msgs[0].Author.Name)
	assert.Equal(t, []string{bob}, f.store.CallsTo("Messages.ListByRoom"))
}

func TestMessageService_ToggleReactionScenario(t *testing.T) {
	for _, cas := range []bool{true, false} {
		f := newMessageFixture(MessageOptions{ReactionCAS: cas})
		ctx := context.Background()
		id := f.store.AddMessage(f.group.ID, bob, "nice", nil)

		state, err := f.svc.ToggleReaction(ctx, id, alice, "👍")
		require.NoError(t, err)
		assert.Equal(t, models.Reactions{"👍": {alice}}, state.Reactions)
		assert.Equal(t, f.group.ID, state.GroupID)

		state, err = f.svc.ToggleReaction(ctx, id, alice, "👍")
		require.NoError(t, err)
		assert.Empty(t, state.Reactions)
		assert.Empty(t, f.store.ReactionsOf(id))

		assert.Equal(t, []string{EventMessageReaction, EventMessageReaction}, f.notifier.types())
		if cas {
			assert.Empty(t, f.store.CallsTo("Messages.UpdateReactions"))
		} else {
			assert.Empty(t, f.store.CallsTo("Messages.CompareAndSwapReactions"))
		}
	}
}

func TestMessageService_ToggleReactionRetriesLostCompare(t *testing.T) {
	f := newMessageFixture(MessageOptions{ReactionCAS: true, CASAttempts: 3})
	id := f.store.AddMessage(f.group.ID, bob, "nice", nil)

	f.store.LoseCAS = 1
	f.store.OnLoseCAS = func(messageID int64) {
		f.store.Messages[messageID].Reactions = models.Reactions{"👍": {bob}}
	}

	state, err := f.svc.ToggleReaction(context.Background(), id, alice, "👍")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob, alice}, state.Reactions["👍"])
	assert.ElementsMatch(t, []string{bob, alice}, f.store.ReactionsOf(id)["👍"])
	assert.Len(t, f.store.CallsTo("Messages.CompareAndSwapReactions"), 2)
}

func TestMessageService_ToggleReactionGivesUp(t *testing.T) {
	f := newMessageFixture(MessageOptions{ReactionCAS: true, CASAttempts: 3})
	id := f.store.AddMessage(f.group.ID, bob, "nice", nil)
	f.store.LoseCAS = 10

	_, err := f.svc.ToggleReaction(context.Background(), id, alice, "🔥")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Len(t, f.store.CallsTo("Messages.CompareAndSwapReactions"), 3)
	assert.Empty(t, f.store.ReactionsOf(id))
	assert.Empty(t, f.notifier.types())
}

func TestMessageService_ToggleReactionRejects(t *testing.T) {
	f := newMessageFixture(MessageOptions{ReactionCAS: true})
	id := f.store.AddMessage(f.group.ID, bob, "nice", nil)
	ctx := context.Background()

	_, err := f.svc.ToggleReaction(ctx, id, alice, " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ToggleReaction(ctx, id, alice, "two words")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ToggleReaction(ctx, 999, alice, "👍")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.ToggleReaction(ctx, id, carol, "👍")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMessageService_ReadReceiptIsIdempotent(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	id := f.store.AddMessage(f.group.ID, bob, "read me", nil)
	ctx := context.Background()

	require.NoError(t, f.svc.AddReadReceipt(ctx, id, alice))
	require.NoError(t, f.svc.AddReadReceipt(ctx, id, alice))

	assert.Len(t, f.store.Receipts, 1)
	assert.True(t, f.store.Receipts[models.ReadReceipt{MessageID: id, UserID: alice}])
	assert.Equal(t, []string{alice, alice}, f.store.CallsTo("Receipts.Upsert"))
	assert.Equal(t, []string{EventMessageRead, EventMessageRead}, f.notifier.types())
}

func TestMessageService_ReadReceiptErrors(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.AddReadReceipt(ctx, 0, alice), apperr.ErrValidation)
	assert.ErrorIs(t, f.svc.AddReadReceipt(ctx, 42, alice), apperr.ErrNotFound)

	id := f.store.AddMessage(f.group.ID, bob, "x", nil)
	f.store.Fail["Receipts.Upsert"] = testutil.ErrStoreDown
	assert.ErrorIs(t, f.svc.AddReadReceipt(ctx, id, alice), apperr.ErrUpstream)
}

func TestMessageService_FanOutSurvivesMembershipFailure(t *testing.T) {
	f := newMessageFixture(MessageOptions{})
	f.store.Fail["Members.UserIDsForGroup"] = testutil.ErrStoreDown

	_, err := f.svc.Create(context.Background(), alice, CreateMessageInput{GroupID: f.group.ID, Content: "hi"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.types())
}
