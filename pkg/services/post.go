package services

import (
	"context"

	"campusnet/pkg/metrics"
	"campusnet/pkg/model"
	"campusnet/pkg/social"

	"github.com/ServiceWeaver/weaver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PostService interface {
	CreatePost(ctx context.Context, callerID string, body string, image model.Upload) (model.PostView, error)
	EditPost(ctx context.Context, callerID string, postID string, body string) (model.PostView, error)
	DeletePost(ctx context.Context, callerID string, postID string) (model.Post, error)
	CreateComment(ctx context.Context, callerID string, postID string, body string) (model.Comment, error)
	DeleteComment(ctx context.Context, callerID string, commentID string) (model.Comment, error)
}

var _ weaver.NotRetriable = PostService.CreatePost
var _ weaver.NotRetriable = PostService.CreateComment

type postService struct {
	weaver.Implements[PostService]
	weaver.WithConfig[postServiceOptions]
	mediaService weaver.Ref[MediaService]
	posts        *social.Posts
}

type postServiceOptions struct {
	MongoDBAddr   string `toml:"mongodb_address"`
	MongoDBPort   int    `toml:"mongodb_port"`
	MemCachedAddr string `toml:"memcached_address"`
	MemCachedPort int    `toml:"memcached_port"`
}

func (p *postService) Init(ctx context.Context) error {
	logger := p.Logger(ctx)

	_, stores, err := openMongo(ctx, logger, p.Config().MongoDBAddr, p.Config().MongoDBPort)
	if err != nil {
		return err
	}
	p.posts = social.NewPosts(social.Deps{
		Stores:   stores,
		Creators: creatorCache(logger, p.Config().MemCachedAddr, p.Config().MemCachedPort),
		Blobs:    p.mediaService.Get(),
		Logger:   logger,
	})

	logger.Info("post service running!",
		"mongodb_addr", p.Config().MongoDBAddr, "mongodb_port", p.Config().MongoDBPort,
		"memcached_addr", p.Config().MemCachedAddr, "memcached_port", p.Config().MemCachedPort,
	)
	return nil
}

func (p *postService) CreatePost(ctx context.Context, callerID string, body string, image model.Upload) (model.PostView, error) {
	logger := p.Logger(ctx)
	logger.Debug("entering CreatePost", "user_id", callerID, "image_bytes", len(image.Data))

	post, err := p.posts.CreatePost(ctx, callerID, body, image)
	if err != nil {
		return model.PostView{}, err
	}
	trace.SpanFromContext(ctx).AddEvent("post created",
		trace.WithAttributes(
			attribute.String("post_id", post.ID),
			attribute.Bool("has_image", post.Image != ""),
		))
	metrics.CreatedPosts.Inc()
	return post, nil
}

func (p *postService) EditPost(ctx context.Context, callerID string, postID string, body string) (model.PostView, error) {
	logger := p.Logger(ctx)
	logger.Debug("entering EditPost", "user_id", callerID, "post_id", postID)
	return p.posts.EditPost(ctx, callerID, postID, body)
}

func (p *postService) DeletePost(ctx context.Context, callerID string, postID string) (model.Post, error) {
	logger := p.Logger(ctx)
	logger.Debug("entering DeletePost", "user_id", callerID, "post_id", postID)
	return p.posts.DeletePost(ctx, callerID, postID)
}

func (p *postService) CreateComment(ctx context.Context, callerID string, postID string, body string) (model.Comment, error) {
	logger := p.Logger(ctx)
	logger.Debug("entering CreateComment", "user_id", callerID, "post_id", postID)

	comment, err := p.posts.CreateComment(ctx, callerID, postID, body)
	if err != nil {
		return model.Comment{}, err
	}
	metrics.CreatedComments.Inc()
	return comment, nil
}

func (p *postService) DeleteComment(ctx context.Context, callerID string, commentID string) (model.Comment, error) {
	logger := p.Logger(ctx)
	logger.Debug("entering DeleteComment", "user_id", callerID, "comment_id", commentID)
	return p.posts.DeleteComment(ctx, callerID, commentID)
}
