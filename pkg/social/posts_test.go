package social

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"campusnet/pkg/apperr"
	"campusnet/pkg/media"
	"campusnet/pkg/model"
	"campusnet/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, alice.ID, "first!", model.Upload{})
	require.NoError(t, err)
	assert.Equal(t, "first!", post.Body)
	assert.Empty(t, post.Image)
	assert.Equal(t, alice.ID, post.Creator.ID)
	assert.Equal(t, alice.School, post.Creator.School)
	assert.Equal(t, []string{post.ID}, f.user(t, alice.ID).Posts)

	_, err = f.posts.CreatePost(ctx, alice.ID, "   ", model.Upload{})
	assert.EqualError(t, err, "Post content cannot be empty")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreatePostWithImage(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, alice.ID, "look", model.Upload{Name: "cat.jpg", Data: []byte("jpg")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(post.Image, ".jpg"))

	big := model.Upload{Name: "cat.jpg", Data: bytes.Repeat([]byte("x"), media.MAX_POST_IMAGE_BYTES+1)}
	_, err = f.posts.CreatePost(ctx, alice.ID, "too big", big)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f.blobs.Fail = assert.AnError
	_, err = f.posts.CreatePost(ctx, alice.ID, "host down", model.Upload{Name: "cat.jpg", Data: []byte("jpg")})
	assert.ErrorIs(t, err, apperr.ErrInternal)

	assert.Len(t, f.user(t, alice.ID).Posts, 1)
}

func TestEditPostOwnership(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	post := f.post(t, alice.ID, "draft")
	ctx := context.Background()

	_, err := f.posts.EditPost(ctx, bob.ID, post.ID, "hijacked")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.posts.EditPost(ctx, alice.ID, "missing", "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.posts.EditPost(ctx, alice.ID, post.ID, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	edited, err := f.posts.EditPost(ctx, alice.ID, post.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Body)
	assert.Equal(t, alice.Username, edited.Creator.Username)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	keep := f.post(t, alice.ID, "keep")
	post := f.post(t, alice.ID, "gone soon")
	ctx := context.Background()
	_, err := f.posts.CreateComment(ctx, bob.ID, post.ID, "nice")
	require.NoError(t, err)

	_, err = f.posts.DeletePost(ctx, bob.ID, post.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	deleted, err := f.posts.DeletePost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)

	assert.Equal(t, []string{keep.ID}, f.user(t, alice.ID).Posts)
	_, err = f.feed.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	comments, err := f.store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = f.posts.DeletePost(ctx, alice.ID, post.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.register(t, "alice"), f.register(t, "bob")
	post := f.post(t, alice.ID, "hello")
	ctx := context.Background()

	_, err := f.posts.CreateComment(ctx, bob.ID, post.ID, " ")
	assert.EqualError(t, err, "Need to write a comment")
	_, err = f.posts.CreateComment(ctx, bob.ID, "missing", "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	comment, err := f.posts.CreateComment(ctx, bob.ID, post.ID, "hi alice")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, comment.Creator.CreatorID)
	assert.Equal(t, bob.FullName, comment.Creator.CreatorName)
	assert.Equal(t, bob.ProfilePic, comment.Creator.CreatorPhoto)

	view, err := f.feed.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CommentCount)

	_, err = f.posts.DeleteComment(ctx, alice.ID, comment.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	deleted, err := f.posts.DeleteComment(ctx, bob.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, deleted.ID)

	view, err = f.feed.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CommentCount)
	assert.Empty(t, view.Comments)

	_, err = f.posts.DeleteComment(ctx, bob.ID, comment.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreatePostRemovesUnlistedPost(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	f.store.FailEdges = map[model.Edge]error{model.EDGE_POSTS: assert.AnError}
	_, err := f.posts.CreatePost(ctx, alice.ID, "lost", model.Upload{})
	assert.ErrorIs(t, err, apperr.ErrInternal)

	feed, err := f.feed.GlobalFeed(ctx, model.Page{})
	require.NoError(t, err)
	assert.Empty(t, feed)
	assert.Empty(t, f.user(t, alice.ID).Posts)
}

// vanishingPosts deletes the post right before a comment is listed on it.
type vanishingPosts struct {
	storage.PostStore
}

func (v vanishingPosts) AddComment(ctx context.Context, id string, commentID string) (model.Post, bool, error) {
	if _, _, err := v.PostStore.DeletePost(ctx, id); err != nil {
		return model.Post{}, false, err
	}
	return v.PostStore.AddComment(ctx, id, commentID)
}

type stuckComments struct {
	storage.CommentStore
}

func (stuckComments) DeleteComment(ctx context.Context, id string) (model.Comment, bool, error) {
	return model.Comment{}, false, assert.AnError
}

func TestCommentOnVanishedPostIsRemoved(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	post := f.post(t, alice.ID, "short lived")
	ctx := context.Background()

	stores := f.store.Stores()
	stores.Posts = vanishingPosts{stores.Posts}
	posts := NewPosts(Deps{Stores: stores})
	_, err := posts.CreateComment(ctx, alice.ID, post.ID, "too late")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	left, err := f.store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestOrphanCommentCleanupFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	post := f.post(t, alice.ID, "short lived")
	ctx := context.Background()

	var logs bytes.Buffer
	stores := f.store.Stores()
	stores.Posts = vanishingPosts{stores.Posts}
	stores.Comments = stuckComments{stores.Comments}
	posts := NewPosts(Deps{Stores: stores, Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	_, err := posts.CreateComment(ctx, alice.ID, post.ID, "too late")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, logs.String(), "error removing orphan comment")
	assert.Contains(t, logs.String(), assert.AnError.Error())
}
