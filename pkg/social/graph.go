package social

import (
	"context"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"
	"campusnet/pkg/utils"
)

// Graph toggles the follow, like and bookmark edges. Every toggle reads the
// current membership and then applies an atomic set operation, so two
// concurrent toggles by the same caller can both take the same branch but
// never duplicate an edge.
type Graph struct {
	Deps
}

func NewGraph(d Deps) *Graph {
	return &Graph{Deps: d.withDefaults()}
}

// ToggleFollow follows targetID if callerID does not follow them yet and
// unfollows otherwise. It returns the updated target. The two sides of the
// edge are separate writes; when the caller side fails the target side is
// reverted, and a revert that fails too is left for the reconciler.
func (g *Graph) ToggleFollow(ctx context.Context, callerID string, targetID string) (model.User, error) {
	if callerID == targetID {
		return model.User{}, apperr.Forbidden("Cannot follow or unfollow yourself")
	}
	caller, err := g.findUser(ctx, callerID)
	if err != nil {
		return model.User{}, err
	}
	if _, err := g.findUser(ctx, targetID); err != nil {
		return model.User{}, err
	}

	follows := !utils.Contains(caller.Following, targetID)
	add, revert := g.Stores.Users.AddEdge, g.Stores.Users.RemoveEdge
	if !follows {
		add, revert = revert, add
	}
	target, found, err := add(ctx, targetID, model.EDGE_FOLLOWERS, callerID)
	if err != nil {
		return model.User{}, g.internal(err, "Could not update follow status")
	}
	if !found {
		return model.User{}, apperr.NotFound("User not found")
	}
	if _, _, err = add(ctx, callerID, model.EDGE_FOLLOWING, targetID); err != nil {
		if _, _, rerr := revert(ctx, targetID, model.EDGE_FOLLOWERS, callerID); rerr != nil {
			g.Logger.Error("error reverting follower edge", "user_id", targetID, "follower_id", callerID, "msg", rerr.Error())
		}
		return model.User{}, g.internal(err, "Could not update follow status")
	}
	g.updateFollowing(ctx, callerID, targetID, follows)
	return target, nil
}

// updateFollowing writes the new edge through to the cached following set
// of callerID, dropping the set when that fails.
func (g *Graph) updateFollowing(ctx context.Context, callerID string, targetID string, follows bool) {
	err := g.Following.UpdateFollowing(ctx, callerID, targetID, follows)
	if err == nil {
		return
	}
	g.Logger.Debug("error updating cached following set", "user_id", callerID, "msg", err.Error())
	if err := g.Following.DropFollowing(ctx, callerID); err != nil {
		g.Logger.Warn("error invalidating cached following set", "user_id", callerID, "msg", err.Error())
	}
}

// ToggleLike adds or removes callerID from the likes of postID and returns
// the updated post.
func (g *Graph) ToggleLike(ctx context.Context, callerID string, postID string) (model.PostView, error) {
	post, err := g.findPost(ctx, postID)
	if err != nil {
		return model.PostView{}, err
	}
	toggle := g.Stores.Posts.AddLike
	if utils.Contains(post.Likes, callerID) {
		toggle = g.Stores.Posts.RemoveLike
	}
	post, found, err := toggle(ctx, postID, callerID)
	if err != nil {
		return model.PostView{}, g.internal(err, "Could not update like status.")
	}
	if !found {
		return model.PostView{}, apperr.NotFound("Post not found")
	}
	creator, err := g.creator(ctx, post.CreatorID)
	if err != nil {
		return model.PostView{}, err
	}
	return model.ViewOf(post, creator), nil
}

// ToggleBookmark adds or removes postID from the bookmarks of callerID and
// returns the updated bookmark list.
func (g *Graph) ToggleBookmark(ctx context.Context, callerID string, postID string) ([]string, error) {
	if _, err := g.findPost(ctx, postID); err != nil {
		return nil, err
	}
	caller, err := g.findUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	toggle := g.Stores.Users.AddEdge
	if utils.Contains(caller.Bookmarks, postID) {
		toggle = g.Stores.Users.RemoveEdge
	}
	caller, found, err := toggle(ctx, callerID, model.EDGE_BOOKMARKS, postID)
	if err != nil {
		return nil, g.internal(err, "Could not update bookmark status")
	}
	if !found {
		return nil, apperr.NotFound("User not found")
	}
	if caller.Bookmarks == nil {
		return []string{}, nil
	}
	return caller.Bookmarks, nil
}
