package social

import (
	"context"
	"errors"
	"strings"

	"campusnet/pkg/apperr"
	"campusnet/pkg/media"
	"campusnet/pkg/model"
	"campusnet/pkg/storage"
	"campusnet/pkg/utils"
)

const (
	MIN_PASSWORD_LENGTH = 6
	LIST_USERS_LIMIT    = 10
)

// Accounts registers users, issues their sessions and edits their profiles.
type Accounts struct {
	Deps
}

func NewAccounts(d Deps) *Accounts {
	return &Accounts{Deps: d.withDefaults()}
}

func (a *Accounts) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	fullName := strings.TrimSpace(reg.FullName)
	school := strings.TrimSpace(reg.School)
	email := utils.Fold(reg.Email)
	username := utils.Fold(reg.Username)
	if fullName == "" || username == "" || email == "" || reg.Password == "" || reg.ConfirmPassword == "" || school == "" {
		return model.User{}, apperr.Validation("Fill in all required fields")
	}

	_, exists, err := a.Stores.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return model.User{}, a.internal(err, "Could not register user")
	}
	if exists {
		return model.User{}, apperr.Conflict("Email already exists")
	}
	_, exists, err = a.Stores.Users.FindUserByUsername(ctx, username)
	if err != nil {
		return model.User{}, a.internal(err, "Could not register user")
	}
	if exists {
		return model.User{}, apperr.Conflict("Username already exists")
	}
	if reg.Password != reg.ConfirmPassword {
		return model.User{}, apperr.Validation("Passwords do not match")
	}
	if len(reg.Password) < MIN_PASSWORD_LENGTH {
		return model.User{}, apperr.Validation("Password must be at least 6 characters")
	}

	hashed, err := a.Hasher.Hash(reg.Password)
	if err != nil {
		return model.User{}, a.internal(err, "Could not register user")
	}
	now := a.Now()
	user := model.User{
		ID:         utils.NewID(),
		FullName:   fullName,
		Email:      email,
		Username:   username,
		Password:   hashed,
		School:     school,
		Bio:        model.DEFAULT_BIO,
		ProfilePic: model.DEFAULT_PROFILE_PIC,
		Followers:  []string{},
		Following:  []string{},
		Bookmarks:  []string{},
		Posts:      []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.Stores.Users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// lost a race against a concurrent registration
			return model.User{}, apperr.Conflict("Email or username already exists")
		}
		return model.User{}, a.internal(err, "Could not register user")
	}
	return user, nil
}

func (a *Accounts) Login(ctx context.Context, email string, password string) (model.Session, error) {
	email = utils.Fold(email)
	if email == "" || password == "" {
		return model.Session{}, apperr.Validation("Fill in all required fields")
	}
	user, found, err := a.Stores.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return model.Session{}, a.internal(err, "Could not log in")
	}
	if !found || !a.Hasher.Verify(user.Password, password) {
		return model.Session{}, apperr.Validation("Invalid Email or Password")
	}
	token, err := a.Tokens.Issue(user.ID)
	if err != nil {
		return model.Session{}, a.internal(err, "Could not log in")
	}
	return model.Session{Token: token, UserID: user.ID}, nil
}

// Authenticate resolves a bearer token to the id of its user.
func (a *Accounts) Authenticate(ctx context.Context, token string) (string, error) {
	return a.Tokens.Verify(token)
}

func (a *Accounts) GetUser(ctx context.Context, id string) (model.User, error) {
	return a.findUser(ctx, id)
}

// ListUsers returns the most recently registered users.
func (a *Accounts) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := a.Stores.Users.ListUsers(ctx, LIST_USERS_LIMIT)
	if err != nil {
		return nil, a.internal(err, "Could not fetch users")
	}
	return users, nil
}

func (a *Accounts) EditUser(ctx context.Context, callerID string, edit model.ProfileEdit) (model.User, error) {
	edit.FullName = strings.TrimSpace(edit.FullName)
	edit.Bio = strings.TrimSpace(edit.Bio)
	user, found, err := a.Stores.Users.UpdateProfile(ctx, callerID, edit)
	if err != nil {
		return model.User{}, a.internal(err, "Could not update user")
	}
	if !found {
		return model.User{}, apperr.NotFound("User not found")
	}
	a.dropCreator(ctx, callerID)
	return user, nil
}

func (a *Accounts) ChangeAvatar(ctx context.Context, callerID string, avatar model.Upload) (model.User, error) {
	if err := media.Check(model.MEDIA_AVATAR, avatar); err != nil {
		return model.User{}, err
	}
	if _, err := a.findUser(ctx, callerID); err != nil {
		return model.User{}, err
	}
	url, err := a.Blobs.Upload(ctx, model.MEDIA_AVATAR, avatar)
	if err != nil {
		return model.User{}, a.passthrough(err, "Could not upload image")
	}
	user, found, err := a.Stores.Users.SetProfilePic(ctx, callerID, url)
	if err != nil {
		return model.User{}, a.internal(err, "Could not update user")
	}
	if !found {
		return model.User{}, apperr.NotFound("User not found")
	}
	a.dropCreator(ctx, callerID)
	return user, nil
}

func (a *Accounts) dropCreator(ctx context.Context, id string) {
	if err := a.Creators.DropCreator(ctx, id); err != nil {
		a.Logger.Warn("error invalidating cached creator", "user_id", id, "msg", err.Error())
	}
}
