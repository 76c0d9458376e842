package social

import (
	"context"

	"campusnet/pkg/model"
	"campusnet/pkg/storage"
	"campusnet/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Feed serves the read side: timelines, single posts and per-user lists.
// Every list is ordered by post creation time, newest first.
type Feed struct {
	Deps
}

func NewFeed(d Deps) *Feed {
	return &Feed{Deps: d.withDefaults()}
}

func (f *Feed) list(ctx context.Context, query storage.PostQuery) ([]model.PostView, error) {
	posts, err := f.Stores.Posts.ListPosts(ctx, query)
	if err != nil {
		return nil, f.internal(err, "Fetching posts failed, please try again.")
	}
	return f.views(ctx, posts)
}

func (f *Feed) GlobalFeed(ctx context.Context, page model.Page) ([]model.PostView, error) {
	return f.list(ctx, storage.PostQuery{Before: page.Before, BeforeID: page.BeforeID, Limit: page.Limit})
}

// FollowingFeed returns the posts of the users callerID follows.
func (f *Feed) FollowingFeed(ctx context.Context, callerID string, page model.Page) ([]model.PostView, error) {
	following, err := f.following(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return []model.PostView{}, nil
	}
	return f.list(ctx, storage.PostQuery{CreatorIDs: following, Before: page.Before, BeforeID: page.BeforeID, Limit: page.Limit})
}

// following reads the following set of id through the following cache.
func (f *Feed) following(ctx context.Context, id string) ([]string, error) {
	cached, found, err := f.Following.Following(ctx, id)
	if err != nil {
		f.Logger.Warn("error reading following set from cache", "user_id", id, "msg", err.Error())
	}
	if found {
		return cached, nil
	}
	user, err := f.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.Following.PutFollowing(ctx, id, user.Following); err != nil {
		f.Logger.Warn("error writing following set to cache", "user_id", id, "msg", err.Error())
		return user.Following, nil
	}

	// a toggle between the read and the fill skips the uncached set
	current, err := f.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !utils.SameSet(user.Following, current.Following) {
		if err := f.Following.DropFollowing(ctx, id); err != nil {
			f.Logger.Warn("error invalidating cached following set", "user_id", id, "msg", err.Error())
		}
	}
	return current.Following, nil
}

// GetPost returns the post with its creator and comments, newest comment first.
func (f *Feed) GetPost(ctx context.Context, postID string) (model.PostView, error) {
	var post model.Post
	var comments []model.Comment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = f.findPost(gctx, postID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = f.Stores.Comments.ListComments(gctx, postID)
		if err != nil {
			return f.internal(err, "Could not fetch post details.")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.PostView{}, err
	}
	creator, err := f.creator(ctx, post.CreatorID)
	if err != nil {
		return model.PostView{}, err
	}
	view := model.ViewOf(post, creator)
	view.Comments = comments
	return view, nil
}

func (f *Feed) PostComments(ctx context.Context, postID string) ([]model.Comment, error) {
	if _, err := f.findPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := f.Stores.Comments.ListComments(ctx, postID)
	if err != nil {
		return nil, f.internal(err, "Could not fetch comments")
	}
	return comments, nil
}

// UserPosts resolves the post list of userID. Ids of deleted posts are skipped.
func (f *Feed) UserPosts(ctx context.Context, userID string) ([]model.PostView, error) {
	user, err := f.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return f.resolve(ctx, user.Posts)
}

// Bookmarks resolves the bookmark list of callerID.
func (f *Feed) Bookmarks(ctx context.Context, callerID string) ([]model.PostView, error) {
	user, err := f.findUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return f.resolve(ctx, user.Bookmarks)
}

func (f *Feed) resolve(ctx context.Context, ids []string) ([]model.PostView, error) {
	if len(ids) == 0 {
		return []model.PostView{}, nil
	}
	return f.list(ctx, storage.PostQuery{IDs: ids})
}

