package services

import (
	"context"

	"campusnet/pkg/metrics"
	"campusnet/pkg/model"
	"campusnet/pkg/social"
	"campusnet/pkg/utils"

	"github.com/ServiceWeaver/weaver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SocialGraphService interface {
	ToggleFollow(ctx context.Context, callerID string, targetID string) (model.User, error)
	ToggleLike(ctx context.Context, callerID string, postID string) (model.PostView, error)
	ToggleBookmark(ctx context.Context, callerID string, postID string) ([]string, error)
}

var _ weaver.NotRetriable = SocialGraphService.ToggleFollow
var _ weaver.NotRetriable = SocialGraphService.ToggleLike
var _ weaver.NotRetriable = SocialGraphService.ToggleBookmark

type socialGraphService struct {
	weaver.Implements[SocialGraphService]
	weaver.WithConfig[socialGraphServiceOptions]
	graph *social.Graph
}

type socialGraphServiceOptions struct {
	MongoDBAddr   string `toml:"mongodb_address"`
	MongoDBPort   int    `toml:"mongodb_port"`
	RedisAddr     string `toml:"redis_address"`
	RedisPort     int    `toml:"redis_port"`
	MemCachedAddr string `toml:"memcached_address"`
	MemCachedPort int    `toml:"memcached_port"`
}

func (s *socialGraphService) Init(ctx context.Context) error {
	logger := s.Logger(ctx)

	_, stores, err := openMongo(ctx, logger, s.Config().MongoDBAddr, s.Config().MongoDBPort)
	if err != nil {
		return err
	}
	s.graph = social.NewGraph(social.Deps{
		Stores:    stores,
		Creators:  creatorCache(logger, s.Config().MemCachedAddr, s.Config().MemCachedPort),
		Following: followingCache(ctx, logger, s.Config().RedisAddr, s.Config().RedisPort),
		Logger:    logger,
	})

	logger.Info("social graph service running!",
		"mongodb_addr", s.Config().MongoDBAddr, "mongodb_port", s.Config().MongoDBPort,
		"redis_addr", s.Config().RedisAddr, "redis_port", s.Config().RedisPort,
	)
	return nil
}

func (s *socialGraphService) ToggleFollow(ctx context.Context, callerID string, targetID string) (model.User, error) {
	logger := s.Logger(ctx)
	logger.Debug("entering ToggleFollow", "user_id", callerID, "target_id", targetID)

	target, err := s.graph.ToggleFollow(ctx, callerID, targetID)
	if err != nil {
		return model.User{}, err
	}
	added := utils.Contains(target.Followers, callerID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("followed", added))
	metrics.Toggles.Get(metrics.ToggleLabel{Edge: "follow", Added: added}).Inc()
	return target, nil
}

func (s *socialGraphService) ToggleLike(ctx context.Context, callerID string, postID string) (model.PostView, error) {
	logger := s.Logger(ctx)
	logger.Debug("entering ToggleLike", "user_id", callerID, "post_id", postID)

	post, err := s.graph.ToggleLike(ctx, callerID, postID)
	if err != nil {
		return model.PostView{}, err
	}
	added := utils.Contains(post.Likes, callerID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("liked", added), attribute.Int("likes", len(post.Likes)))
	metrics.Toggles.Get(metrics.ToggleLabel{Edge: "like", Added: added}).Inc()
	return post, nil
}

func (s *socialGraphService) ToggleBookmark(ctx context.Context, callerID string, postID string) ([]string, error) {
	logger := s.Logger(ctx)
	logger.Debug("entering ToggleBookmark", "user_id", callerID, "post_id", postID)

	bookmarks, err := s.graph.ToggleBookmark(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	added := utils.Contains(bookmarks, postID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("bookmarked", added))
	metrics.Toggles.Get(metrics.ToggleLabel{Edge: "bookmark", Added: added}).Inc()
	return bookmarks, nil
}
