package social

import (
	"context"
	"testing"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"
	"campusnet/pkg/realtime"
	"campusnet/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstMessageCreatesConversation(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	ctx := context.Background()

	msg, err := f.gateway.SendMessage(ctx, alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, msg.SenderID)

	conv, found, err := f.store.FindConversation(ctx, utils.ConversationKey(bob.ID, alice.ID))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, conv.ID, msg.ConversationID)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, conv.Participants)
	assert.Equal(t, "hi bob", conv.LastMessage.Text)
	assert.Equal(t, alice.ID, conv.LastMessage.SenderID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, bob.ID, f.notifier.sent[0].UserID)
	assert.Equal(t, realtime.EVENT_NEW_MESSAGE, f.notifier.sent[0].Event)
}

func TestReplyReusesConversation(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	ctx := context.Background()

	first, err := f.gateway.SendMessage(ctx, alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	reply, err := f.gateway.SendMessage(ctx, bob.ID, alice.ID, "hi alice")
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, reply.ConversationID)

	convs, err := f.gateway.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "hi alice", convs[0].LastMessage.Text)
	assert.Equal(t, bob.ID, convs[0].LastMessage.SenderID)
	require.Len(t, convs[0].Participants, 1)
	assert.Equal(t, bob.ID, convs[0].Participants[0].ID)
	assert.Equal(t, bob.FullName, convs[0].Participants[0].FullName)

	msgs, err := f.gateway.GetMessages(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, reply.ID, msgs[0].ID)
	assert.Equal(t, first.ID, msgs[1].ID)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	ctx := context.Background()

	_, err := f.gateway.SendMessage(ctx, alice.ID, bob.ID, "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, f.notifier.sent)
}

func TestSendMessageFailsOnlyOnStore(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	_, err := f.gateway.SendMessage(ctx, alice.ID, alice.ID, "note to self")
	require.NoError(t, err)
	msgs, err := f.gateway.GetMessages(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = f.gateway.SendMessage(ctx, alice.ID, "missing", "hi")
	require.NoError(t, err)
	convs, err := f.gateway.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	for _, c := range convs {
		assert.Empty(t, c.Participants)
	}
}

func TestNotifyFailureDoesNotFailSend(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	f.notifier.err = assert.AnError

	_, err := f.gateway.SendMessage(context.Background(), alice.ID, bob.ID, "are you there?")
	assert.NoError(t, err)
}

func TestSendMessageStoreFailure(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	f.store.FailWrites = assert.AnError

	_, err := f.gateway.SendMessage(context.Background(), alice.ID, bob.ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Empty(t, f.notifier.sent)
}

func TestGetMessagesWithoutConversation(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")

	_, err := f.gateway.GetMessages(context.Background(), alice.ID, bob.ID)
	assert.EqualError(t, err, "No Conversation")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// Alice follows Bob, Bob posts, Alice sees it, likes it, comments, and
// messages Bob about it.
func TestAliceAndBob(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	ctx := context.Background()

	_, err := f.graph.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	post := f.post(t, bob.ID, "campus party tonight")

	feed, err := f.feed.FollowingFeed(ctx, alice.ID, model.Page{})
	require.NoError(t, err)
	require.Equal(t, []string{post.ID}, viewIDs(feed))

	liked, err := f.graph.ToggleLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Contains(t, liked.Likes, alice.ID)

	_, err = f.posts.CreateComment(ctx, alice.ID, post.ID, "count me in")
	require.NoError(t, err)

	_, err = f.gateway.SendMessage(ctx, alice.ID, bob.ID, "see you there")
	require.NoError(t, err)

	view, err := f.feed.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, view.Likes)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, alice.FullName, view.Comments[0].Creator.CreatorName)

	convs, err := f.gateway.ListConversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, alice.ID, convs[0].Participants[0].ID)
	assert.Equal(t, "see you there", convs[0].LastMessage.Text)
}
