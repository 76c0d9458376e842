// Package social implements the account, graph, content, feed and
// messaging operations on top of the stores. Types here are plain Go
// values; the weaver components in pkg/services own their lifecycles.
package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"campusnet/pkg/apperr"
	"campusnet/pkg/auth"
	"campusnet/pkg/cache"
	"campusnet/pkg/model"
	"campusnet/pkg/storage"
	"campusnet/pkg/utils"
)

// Notifier delivers a realtime event to a user, wherever they are connected.
type Notifier interface {
	Notify(ctx context.Context, userID string, event string, payload interface{}) error
}

// BlobHost stores an upload and returns the URL it is served from.
type BlobHost interface {
	Upload(ctx context.Context, kind model.MediaKind, file model.Upload) (string, error)
}

type Deps struct {
	Stores    storage.Stores
	Creators  cache.CreatorCache
	Following cache.FollowingCache
	Blobs     BlobHost
	Notifier  Notifier
	Hasher    auth.Hasher
	Tokens    *auth.Tokens
	Logger    *slog.Logger
	Now       func() time.Time
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string, string, interface{}) error { return nil }

func (d Deps) withDefaults() Deps {
	if d.Creators == nil {
		d.Creators = cache.Nop{}
	}
	if d.Following == nil {
		d.Following = cache.Nop{}
	}
	if d.Notifier == nil {
		d.Notifier = discardNotifier{}
	}
	if d.Hasher == nil {
		d.Hasher = auth.NewBcrypt(0)
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// internal logs a store or blob host failure and hides it behind msg.
func (d Deps) internal(err error, msg string) error {
	d.Logger.Error(msg, "msg", err.Error())
	return apperr.Internal(msg)
}

// passthrough keeps tagged errors and hides everything else behind msg.
func (d Deps) passthrough(err error, msg string) error {
	var tagged *apperr.Error
	if errors.As(err, &tagged) {
		return err
	}
	return d.internal(err, msg)
}

func (d Deps) findUser(ctx context.Context, id string) (model.User, error) {
	user, found, err := d.Stores.Users.FindUser(ctx, id)
	if err != nil {
		return model.User{}, d.internal(err, "Could not fetch user")
	}
	if !found {
		return model.User{}, apperr.NotFound("User not found")
	}
	return user, nil
}

func (d Deps) findPost(ctx context.Context, id string) (model.Post, error) {
	post, found, err := d.Stores.Posts.FindPost(ctx, id)
	if err != nil {
		return model.Post{}, d.internal(err, "Could not fetch post")
	}
	if !found {
		return model.Post{}, apperr.NotFound("Post not found")
	}
	return post, nil
}

// creators returns the projections of ids, reading through the creator
// cache. Ids without a user map to a bare projection carrying only the id.
func (d Deps) creators(ctx context.Context, ids []string) (map[string]model.Creator, error) {
	ids = utils.Unique(ids)
	creators, err := d.Creators.GetCreators(ctx, ids)
	if err != nil {
		d.Logger.Warn("error reading creators from cache", "msg", err.Error())
		creators = map[string]model.Creator{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := creators[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return creators, nil
	}
	users, err := d.Stores.Users.FindUsers(ctx, missing)
	if err != nil {
		return nil, d.internal(err, "Could not fetch post creators")
	}
	loaded := make([]model.Creator, 0, len(users))
	for _, u := range users {
		c := model.CreatorOf(u)
		creators[u.ID] = c
		loaded = append(loaded, c)
	}
	if err := d.Creators.PutCreators(ctx, loaded); err != nil {
		d.Logger.Warn("error writing creators to cache", "msg", err.Error())
	}
	for _, id := range missing {
		if _, ok := creators[id]; !ok {
			creators[id] = model.Creator{ID: id}
		}
	}
	return creators, nil
}

func (d Deps) creator(ctx context.Context, id string) (model.Creator, error) {
	creators, err := d.creators(ctx, []string{id})
	if err != nil {
		return model.Creator{}, err
	}
	return creators[id], nil
}

// views projects the creator of every post in one batch.
func (d Deps) views(ctx context.Context, posts []model.Post) ([]model.PostView, error) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.CreatorID)
	}
	creators, err := d.creators(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]model.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, model.ViewOf(p, creators[p.CreatorID]))
	}
	return views, nil
}
