package social

import (
	"context"
	"strings"

	"campusnet/pkg/apperr"
	"campusnet/pkg/media"
	"campusnet/pkg/model"
	"campusnet/pkg/utils"
)

// Posts creates, edits and deletes posts and their comments.
type Posts struct {
	Deps
}

func NewPosts(d Deps) *Posts {
	return &Posts{Deps: d.withDefaults()}
}

func (p *Posts) CreatePost(ctx context.Context, callerID string, body string, image model.Upload) (model.PostView, error) {
	if strings.TrimSpace(body) == "" {
		return model.PostView{}, apperr.Validation("Post content cannot be empty")
	}
	if !image.Empty() {
		if err := media.Check(model.MEDIA_POST_IMAGE, image); err != nil {
			return model.PostView{}, err
		}
	}
	caller, err := p.findUser(ctx, callerID)
	if err != nil {
		return model.PostView{}, err
	}

	var imageURL string
	if !image.Empty() {
		imageURL, err = p.Blobs.Upload(ctx, model.MEDIA_POST_IMAGE, image)
		if err != nil {
			return model.PostView{}, p.passthrough(err, "Could not upload image")
		}
	}

	now := p.Now()
	post := model.Post{
		ID:        utils.NewID(),
		CreatorID: callerID,
		Body:      body,
		Image:     imageURL,
		Likes:     []string{},
		Comments:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Stores.Posts.InsertPost(ctx, post); err != nil {
		return model.PostView{}, p.internal(err, "Post creation failed.")
	}
	if _, _, err := p.Stores.Users.AddEdge(ctx, callerID, model.EDGE_POSTS, post.ID); err != nil {
		// an unlisted post would still show in the feeds
		if _, _, derr := p.Stores.Posts.DeletePost(ctx, post.ID); derr != nil {
			p.Logger.Error("error removing unlisted post", "post_id", post.ID, "msg", derr.Error())
		}
		return model.PostView{}, p.internal(err, "Post creation failed.")
	}
	return model.ViewOf(post, model.CreatorOf(caller)), nil
}

// owned loads postID and checks that callerID created it.
func (p *Posts) owned(ctx context.Context, callerID string, postID string, action string) (model.Post, error) {
	post, err := p.findPost(ctx, postID)
	if err != nil {
		return model.Post{}, err
	}
	if post.CreatorID != callerID {
		return model.Post{}, apperr.Forbidden("You can't %s this post because you are not the owner", action)
	}
	return post, nil
}

func (p *Posts) EditPost(ctx context.Context, callerID string, postID string, body string) (model.PostView, error) {
	if _, err := p.owned(ctx, callerID, postID, "edit"); err != nil {
		return model.PostView{}, err
	}
	if strings.TrimSpace(body) == "" {
		return model.PostView{}, apperr.Validation("Post content cannot be empty")
	}
	post, found, err := p.Stores.Posts.UpdatePostBody(ctx, postID, body)
	if err != nil {
		return model.PostView{}, p.internal(err, "Could not update post")
	}
	if !found {
		return model.PostView{}, apperr.NotFound("Post not found")
	}
	creator, err := p.creator(ctx, post.CreatorID)
	if err != nil {
		return model.PostView{}, err
	}
	return model.ViewOf(post, creator), nil
}

// DeletePost removes the post, its entry in the owner's post list and its
// comments, in that order.
func (p *Posts) DeletePost(ctx context.Context, callerID string, postID string) (model.Post, error) {
	if _, err := p.owned(ctx, callerID, postID, "delete"); err != nil {
		return model.Post{}, err
	}
	post, found, err := p.Stores.Posts.DeletePost(ctx, postID)
	if err != nil {
		return model.Post{}, p.internal(err, "Could not delete post")
	}
	if !found {
		return model.Post{}, apperr.NotFound("Post not found")
	}
	if _, _, err := p.Stores.Users.RemoveEdge(ctx, post.CreatorID, model.EDGE_POSTS, post.ID); err != nil {
		return model.Post{}, p.internal(err, "Could not delete post")
	}
	n, err := p.Stores.Comments.DeletePostComments(ctx, post.ID)
	if err != nil {
		return model.Post{}, p.internal(err, "Could not delete post comments")
	}
	p.Logger.Debug("deleted post", "post_id", post.ID, "comments", n)
	return post, nil
}

func (p *Posts) CreateComment(ctx context.Context, callerID string, postID string, body string) (model.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return model.Comment{}, apperr.Validation("Need to write a comment")
	}
	if _, err := p.findPost(ctx, postID); err != nil {
		return model.Comment{}, err
	}
	caller, err := p.findUser(ctx, callerID)
	if err != nil {
		return model.Comment{}, err
	}
	comment := model.Comment{
		ID:     utils.NewID(),
		PostID: postID,
		Creator: model.CommentCreator{
			CreatorID:    caller.ID,
			CreatorName:  caller.FullName,
			CreatorPhoto: caller.ProfilePic,
		},
		Body:      body,
		CreatedAt: p.Now(),
	}
	if err := p.Stores.Comments.InsertComment(ctx, comment); err != nil {
		return model.Comment{}, p.internal(err, "Could not create comment")
	}
	_, found, err := p.Stores.Posts.AddComment(ctx, postID, comment.ID)
	if err != nil {
		p.dropOrphan(ctx, comment.ID)
		return model.Comment{}, p.internal(err, "Could not create comment")
	}
	if !found {
		// the post was deleted in between
		p.dropOrphan(ctx, comment.ID)
		return model.Comment{}, apperr.NotFound("Post not found")
	}
	return comment, nil
}

// dropOrphan removes a comment no post lists.
func (p *Posts) dropOrphan(ctx context.Context, commentID string) {
	if _, _, err := p.Stores.Comments.DeleteComment(ctx, commentID); err != nil {
		p.Logger.Error("error removing orphan comment", "comment_id", commentID, "msg", err.Error())
	}
}

// DeleteComment checks the creator snapshot of the comment against callerID.
func (p *Posts) DeleteComment(ctx context.Context, callerID string, commentID string) (model.Comment, error) {
	comment, found, err := p.Stores.Comments.FindComment(ctx, commentID)
	if err != nil {
		return model.Comment{}, p.internal(err, "Could not fetch comment")
	}
	if !found {
		return model.Comment{}, apperr.NotFound("Comment not found")
	}
	if comment.Creator.CreatorID != callerID {
		return model.Comment{}, apperr.Forbidden("Cannot delete comment. Unauthorized")
	}
	if _, _, err := p.Stores.Posts.RemoveComment(ctx, comment.PostID, commentID); err != nil {
		return model.Comment{}, p.internal(err, "Could not delete comment")
	}
	deleted, found, err := p.Stores.Comments.DeleteComment(ctx, commentID)
	if err != nil {
		return model.Comment{}, p.internal(err, "Could not delete comment")
	}
	if !found {
		return model.Comment{}, apperr.NotFound("Comment not found")
	}
	return deleted, nil
}
