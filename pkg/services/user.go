package services

import (
	"context"
	"fmt"
	"os"

	"campusnet/pkg/auth"
	"campusnet/pkg/model"
	"campusnet/pkg/social"

	"github.com/ServiceWeaver/weaver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type UserService interface {
	Register(ctx context.Context, reg model.Registration) (model.User, error)
	Login(ctx context.Context, email string, password string) (model.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	EditUser(ctx context.Context, callerID string, edit model.ProfileEdit) (model.User, error)
	ChangeAvatar(ctx context.Context, callerID string, avatar model.Upload) (model.User, error)
}

var _ weaver.NotRetriable = UserService.Register

type userService struct {
	weaver.Implements[UserService]
	weaver.WithConfig[userServiceOptions]
	mediaService weaver.Ref[MediaService]
	accounts     *social.Accounts
}

type userServiceOptions struct {
	MongoDBAddr   string `toml:"mongodb_address"`
	MongoDBPort   int    `toml:"mongodb_port"`
	MemCachedAddr string `toml:"memcached_address"`
	MemCachedPort int    `toml:"memcached_port"`
	JWTSecret     string `toml:"jwt_secret"`
	BcryptCost    int    `toml:"bcrypt_cost"`
}

func (u *userService) Init(ctx context.Context) error {
	logger := u.Logger(ctx)

	secret := u.Config().JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		err := fmt.Errorf("no jwt secret configured: set jwt_secret or JWT_SECRET")
		logger.Error(err.Error())
		return err
	}

	_, stores, err := openMongo(ctx, logger, u.Config().MongoDBAddr, u.Config().MongoDBPort)
	if err != nil {
		return err
	}
	u.accounts = social.NewAccounts(social.Deps{
		Stores:   stores,
		Creators: creatorCache(logger, u.Config().MemCachedAddr, u.Config().MemCachedPort),
		Blobs:    u.mediaService.Get(),
		Hasher:   auth.NewBcrypt(u.Config().BcryptCost),
		Tokens:   auth.NewTokens(secret),
		Logger:   logger,
	})

	logger.Info("user service running!",
		"mongodb_addr", u.Config().MongoDBAddr, "mongodb_port", u.Config().MongoDBPort,
		"memcached_addr", u.Config().MemCachedAddr, "memcached_port", u.Config().MemCachedPort,
	)
	return nil
}

func (u *userService) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	logger := u.Logger(ctx)
	logger.Debug("entering Register", "username", reg.Username, "school", reg.School)
	user, err := u.accounts.Register(ctx, reg)
	if err != nil {
		return model.User{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("user_id", user.ID))
	return user, nil
}

func (u *userService) Login(ctx context.Context, email string, password string) (model.Session, error) {
	logger := u.Logger(ctx)
	logger.Debug("entering Login", "email", email)
	return u.accounts.Login(ctx, email, password)
}

func (u *userService) Authenticate(ctx context.Context, token string) (string, error) {
	return u.accounts.Authenticate(ctx, token)
}

func (u *userService) GetUser(ctx context.Context, id string) (model.User, error) {
	logger := u.Logger(ctx)
	logger.Debug("entering GetUser", "user_id", id)
	return u.accounts.GetUser(ctx, id)
}

func (u *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	logger := u.Logger(ctx)
	logger.Debug("entering ListUsers")
	return u.accounts.ListUsers(ctx)
}

func (u *userService) EditUser(ctx context.Context, callerID string, edit model.ProfileEdit) (model.User, error) {
	logger := u.Logger(ctx)
	logger.Debug("entering EditUser", "user_id", callerID)
	return u.accounts.EditUser(ctx, callerID, edit)
}

func (u *userService) ChangeAvatar(ctx context.Context, callerID string, avatar model.Upload) (model.User, error) {
	logger := u.Logger(ctx)
	logger.Debug("entering ChangeAvatar", "user_id", callerID, "size", len(avatar.Data))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("avatar_bytes", len(avatar.Data)))
	return u.accounts.ChangeAvatar(ctx, callerID, avatar)
}
