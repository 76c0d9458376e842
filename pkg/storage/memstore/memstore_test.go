package memstore

import (
	"context"
	"testing"
	"time"

	"campusnet/pkg/model"
	"campusnet/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "1", Email: "a@x", Username: "a"}))
	assert.ErrorIs(t, s.InsertUser(ctx, model.User{ID: "2", Email: "a@x", Username: "b"}), storage.ErrDuplicate)
	assert.ErrorIs(t, s.InsertUser(ctx, model.User{ID: "3", Email: "c@x", Username: "a"}), storage.ErrDuplicate)
}

func TestEdgesHaveSetSemantics(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "1", Email: "a@x", Username: "a", Following: []string{}}))

	_, _, err := s.AddEdge(ctx, "1", model.EDGE_FOLLOWING, "2")
	require.NoError(t, err)
	u, found, err := s.AddEdge(ctx, "1", model.EDGE_FOLLOWING, "2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"2"}, u.Following)

	u, _, err = s.RemoveEdge(ctx, "1", model.EDGE_FOLLOWING, "2")
	require.NoError(t, err)
	assert.Empty(t, u.Following)

	_, found, err = s.AddEdge(ctx, "missing", model.EDGE_FOLLOWING, "2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "p", Likes: []string{"a"}}))
	p, _, _ := s.FindPost(ctx, "p")
	p.Likes[0] = "mutated"
	p, _, _ = s.FindPost(ctx, "p")
	assert.Equal(t, []string{"a"}, p.Likes)
}

func TestListPostsQuery(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "old", CreatorID: "a", CreatedAt: now.Add(-2 * time.Minute)}))
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "mid", CreatorID: "b", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "new", CreatorID: "a", CreatedAt: now}))

	ids := func(posts []model.Post) []string {
		out := []string{}
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	all, err := s.ListPosts(ctx, storage.PostQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids(all))

	byA, _ := s.ListPosts(ctx, storage.PostQuery{CreatorIDs: []string{"a"}})
	assert.Equal(t, []string{"new", "old"}, ids(byA))

	none, _ := s.ListPosts(ctx, storage.PostQuery{CreatorIDs: []string{}})
	assert.Empty(t, none)

	page, _ := s.ListPosts(ctx, storage.PostQuery{Before: now, Limit: 1})
	assert.Equal(t, []string{"mid"}, ids(page))
}

func TestListPostsCursorKeepsTies(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	for _, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, s.InsertPost(ctx, model.Post{ID: id, CreatorID: "a", CreatedAt: now}))
	}
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "p0", CreatorID: "a", CreatedAt: now.Add(-time.Second)}))

	first, err := s.ListPosts(ctx, storage.PostQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "p3", first[0].ID)
	assert.Equal(t, "p2", first[1].ID)

	last := first[1]
	rest, err := s.ListPosts(ctx, storage.PostQuery{Before: last.CreatedAt, BeforeID: last.ID})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "p1", rest[0].ID)
	assert.Equal(t, "p0", rest[1].ID)

	older, _ := s.ListPosts(ctx, storage.PostQuery{Before: now})
	require.Len(t, older, 1)
	assert.Equal(t, "p0", older[0].ID)
}

func TestFindOrCreateConversation(t *testing.T) {
	ctx := context.Background()
	s := New()
	first, created, err := s.FindOrCreateConversation(ctx, model.Conversation{ID: "c1", Key: "a:b", Participants: []string{"a", "b"}})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.FindOrCreateConversation(ctx, model.Conversation{ID: "c2", Key: "a:b", Participants: []string{"b", "a"}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	convs, _ := s.ListConversations(ctx, "b")
	assert.Len(t, convs, 1)
}

func TestFailWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.FailWrites = assert.AnError
	assert.ErrorIs(t, s.InsertPost(ctx, model.Post{ID: "p"}), assert.AnError)
	_, _, err := s.FindPost(ctx, "p")
	assert.NoError(t, err)
}

func TestFailEdges(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "1", Email: "a@x", Username: "a"}))
	s.FailEdges = map[model.Edge]error{model.EDGE_POSTS: assert.AnError}

	_, _, err := s.AddEdge(ctx, "1", model.EDGE_POSTS, "p")
	assert.ErrorIs(t, err, assert.AnError)
	_, found, err := s.AddEdge(ctx, "1", model.EDGE_FOLLOWING, "2")
	require.NoError(t, err)
	assert.True(t, found)
}
