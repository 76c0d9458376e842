package social

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"campusnet/pkg/apperr"
	"campusnet/pkg/media"
	"campusnet/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaults(t *testing.T) {
	f := newFixture(t)
	user, err := f.accounts.Register(context.Background(), model.Registration{
		FullName:        " Alice Liddell ",
		Username:        "Alice",
		Email:           "Alice@Campus.EDU",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		School:          "Campus U",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@campus.edu", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice Liddell", user.FullName)
	assert.Equal(t, model.DEFAULT_BIO, user.Bio)
	assert.Equal(t, model.DEFAULT_PROFILE_PIC, user.ProfilePic)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NotNil(t, user.Followers)
	assert.NotNil(t, user.Following)
	assert.NotNil(t, user.Bookmarks)
	assert.NotNil(t, user.Posts)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	ctx := context.Background()

	valid := model.Registration{
		FullName: "Bob", Username: "bob", Email: "bob@campus.edu",
		Password: "secret1", ConfirmPassword: "secret1", School: "Campus U",
	}

	missing := valid
	missing.School = " "
	_, err := f.accounts.Register(ctx, missing)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	dupEmail := valid
	dupEmail.Email = "ALICE@campus.edu"
	_, err = f.accounts.Register(ctx, dupEmail)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 422, apperr.StatusOf(err))

	dupUsername := valid
	dupUsername.Username = "Alice"
	_, err = f.accounts.Register(ctx, dupUsername)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	mismatch := valid
	mismatch.ConfirmPassword = "secret2"
	_, err = f.accounts.Register(ctx, mismatch)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	short := valid
	short.Password, short.ConfirmPassword = "abc", "abc"
	_, err = f.accounts.Register(ctx, short)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.accounts.Register(ctx, valid)
	assert.NoError(t, err)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	session, err := f.accounts.Login(ctx, "ALICE@campus.edu", "password")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, session.UserID)

	id, err := f.accounts.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id)

	_, err = f.accounts.Login(ctx, "alice@campus.edu", "wrong-password")
	assert.EqualError(t, err, "Invalid Email or Password")
	_, err = f.accounts.Login(ctx, "nobody@campus.edu", "password")
	assert.EqualError(t, err, "Invalid Email or Password")
	_, err = f.accounts.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.accounts.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestGetAndListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		f.register(t, "user"+string(rune('a'+i)))
	}
	users, err := f.accounts.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, LIST_USERS_LIMIT)
	assert.Equal(t, "userl", users[0].Username)

	_, err = f.accounts.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEditUserKeepsEmptyFields(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	// warm the creator cache, the edit must invalidate it
	f.post(t, alice.ID, "hello")
	_, err := f.feed.GlobalFeed(ctx, model.Page{})
	require.NoError(t, err)

	user, err := f.accounts.EditUser(ctx, alice.ID, model.ProfileEdit{Bio: "reads a lot"})
	require.NoError(t, err)
	assert.Equal(t, "reads a lot", user.Bio)
	assert.Equal(t, alice.FullName, user.FullName)

	user, err = f.accounts.EditUser(ctx, alice.ID, model.ProfileEdit{FullName: "Alice L"})
	require.NoError(t, err)
	assert.Equal(t, "Alice L", user.FullName)
	assert.Equal(t, "reads a lot", user.Bio)

	feed, err := f.feed.GlobalFeed(ctx, model.Page{})
	require.NoError(t, err)
	assert.Equal(t, "Alice L", feed[0].Creator.FullName)

	_, err = f.accounts.EditUser(ctx, "missing", model.ProfileEdit{Bio: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChangeAvatar(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	_, err := f.accounts.ChangeAvatar(ctx, alice.ID, model.Upload{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	big := model.Upload{Name: "me.png", Data: bytes.Repeat([]byte("x"), media.MAX_AVATAR_BYTES+1)}
	_, err = f.accounts.ChangeAvatar(ctx, alice.ID, big)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 0, f.blobs.Len())

	user, err := f.accounts.ChangeAvatar(ctx, alice.ID, model.Upload{Name: "me.png", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ProfilePic, "http://localhost:12345/media/"))
	assert.True(t, strings.HasSuffix(user.ProfilePic, ".png"))
	assert.Equal(t, 1, f.blobs.Len())

	f.blobs.Fail = assert.AnError
	_, err = f.accounts.ChangeAvatar(ctx, alice.ID, model.Upload{Name: "me.png", Data: []byte("png")})
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
