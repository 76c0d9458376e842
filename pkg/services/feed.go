package services

import (
	"context"

	"campusnet/pkg/model"
	"campusnet/pkg/social"

	"github.com/ServiceWeaver/weaver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type FeedService interface {
	GlobalFeed(ctx context.Context, page model.Page) ([]model.PostView, error)
	FollowingFeed(ctx context.Context, callerID string, page model.Page) ([]model.PostView, error)
	GetPost(ctx context.Context, postID string) (model.PostView, error)
	PostComments(ctx context.Context, postID string) ([]model.Comment, error)
	UserPosts(ctx context.Context, userID string) ([]model.PostView, error)
	Bookmarks(ctx context.Context, callerID string) ([]model.PostView, error)
}

type feedService struct {
	weaver.Implements[FeedService]
	weaver.WithConfig[feedServiceOptions]
	feed *social.Feed
}

type feedServiceOptions struct {
	MongoDBAddr   string `toml:"mongodb_address"`
	MongoDBPort   int    `toml:"mongodb_port"`
	RedisAddr     string `toml:"redis_address"`
	RedisPort     int    `toml:"redis_port"`
	MemCachedAddr string `toml:"memcached_address"`
	MemCachedPort int    `toml:"memcached_port"`
}

func (f *feedService) Init(ctx context.Context) error {
	logger := f.Logger(ctx)

	_, stores, err := openMongo(ctx, logger, f.Config().MongoDBAddr, f.Config().MongoDBPort)
	if err != nil {
		return err
	}
	f.feed = social.NewFeed(social.Deps{
		Stores:    stores,
		Creators:  creatorCache(logger, f.Config().MemCachedAddr, f.Config().MemCachedPort),
		Following: followingCache(ctx, logger, f.Config().RedisAddr, f.Config().RedisPort),
		Logger:    logger,
	})

	logger.Info("feed service running!",
		"mongodb_addr", f.Config().MongoDBAddr, "mongodb_port", f.Config().MongoDBPort,
		"redis_addr", f.Config().RedisAddr, "redis_port", f.Config().RedisPort,
		"memcached_addr", f.Config().MemCachedAddr, "memcached_port", f.Config().MemCachedPort,
	)
	return nil
}

func pageAttributes(ctx context.Context, page model.Page, n int) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("page_limit", page.Limit),
		attribute.Int("num_posts", n),
	)
}

func (f *feedService) GlobalFeed(ctx context.Context, page model.Page) ([]model.PostView, error) {
	logger := f.Logger(ctx)
	logger.Debug("entering GlobalFeed", "before", page.Before, "before_id", page.BeforeID, "limit", page.Limit)
	posts, err := f.feed.GlobalFeed(ctx, page)
	if err != nil {
		return nil, err
	}
	pageAttributes(ctx, page, len(posts))
	return posts, nil
}

func (f *feedService) FollowingFeed(ctx context.Context, callerID string, page model.Page) ([]model.PostView, error) {
	logger := f.Logger(ctx)
	logger.Debug("entering FollowingFeed", "user_id", callerID, "before", page.Before, "before_id", page.BeforeID, "limit", page.Limit)
	posts, err := f.feed.FollowingFeed(ctx, callerID, page)
	if err != nil {
		return nil, err
	}
	pageAttributes(ctx, page, len(posts))
	return posts, nil
}

func (f *feedService) GetPost(ctx context.Context, postID string) (model.PostView, error) {
	logger := f.Logger(ctx)
	logger.Debug("entering GetPost", "post_id", postID)
	return f.feed.GetPost(ctx, postID)
}

func (f *feedService) PostComments(ctx context.Context, postID string) ([]model.Comment, error) {
	logger := f.Logger(ctx)
	logger.Debug("entering PostComments", "post_id", postID)
	return f.feed.PostComments(ctx, postID)
}

func (f *feedService) UserPosts(ctx context.Context, userID string) ([]model.PostView, error) {
	logger := f.Logger(ctx)
	logger.Debug("entering UserPosts", "user_id", userID)
	return f.feed.UserPosts(ctx, userID)
}

func (f *feedService) Bookmarks(ctx context.Context, callerID string) ([]model.PostView, error) {
	logger := f.Logger(ctx)
	logger.Debug("entering Bookmarks", "user_id", callerID)
	return f.feed.Bookmarks(ctx, callerID)
}
