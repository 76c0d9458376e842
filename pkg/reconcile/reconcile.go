// Package reconcile detects the drift left behind by the multi-document
// writes of the graph and content operations. It reports and never repairs.
package reconcile

import (
	"context"
	"log/slog"

	"campusnet/pkg/model"
	"campusnet/pkg/storage"
	"campusnet/pkg/utils"
)

type Kind string

const (
	// a follows b but b does not list a as follower
	MISSING_FOLLOWER Kind = "missing_follower"
	// a lists b as follower but b does not follow a
	MISSING_FOLLOWING Kind = "missing_following"
	// an edge points to a user that does not exist
	DANGLING_USER Kind = "dangling_user"
	// an owner list entry points to a post that does not exist
	DANGLING_POST Kind = "dangling_post"
	// an owner list entry points to a post created by someone else
	FOREIGN_POST Kind = "foreign_post"
	// a post is missing from its creator's list
	UNLISTED_POST Kind = "unlisted_post"
)

type Finding struct {
	Kind   Kind
	UserID string
	RefID  string
}

type Report struct {
	Users    int
	Posts    int
	Findings []Finding
}

// Counts groups the findings by kind.
func (r Report) Counts() map[Kind]int {
	counts := map[Kind]int{}
	for _, f := range r.Findings {
		counts[f.Kind]++
	}
	return counts
}

type Checker struct {
	Stores storage.Stores
	Logger *slog.Logger
}

// Run scans every user and post once.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	users, err := c.Stores.Users.ListUsers(ctx, 0)
	if err != nil {
		return Report{}, err
	}
	posts, err := c.Stores.Posts.ListPosts(ctx, storage.PostQuery{})
	if err != nil {
		return Report{}, err
	}

	byUser := make(map[string]model.User, len(users))
	for _, u := range users {
		byUser[u.ID] = u
	}
	byPost := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		byPost[p.ID] = p
	}

	report := Report{Users: len(users), Posts: len(posts)}
	add := func(kind Kind, userID string, refID string) {
		report.Findings = append(report.Findings, Finding{Kind: kind, UserID: userID, RefID: refID})
	}
	for _, u := range users {
		for _, id := range u.Following {
			other, ok := byUser[id]
			if !ok {
				add(DANGLING_USER, u.ID, id)
			} else if !utils.Contains(other.Followers, u.ID) {
				add(MISSING_FOLLOWER, u.ID, id)
			}
		}
		for _, id := range u.Followers {
			other, ok := byUser[id]
			if !ok {
				add(DANGLING_USER, u.ID, id)
			} else if !utils.Contains(other.Following, u.ID) {
				add(MISSING_FOLLOWING, u.ID, id)
			}
		}
		for _, id := range u.Posts {
			p, ok := byPost[id]
			if !ok {
				add(DANGLING_POST, u.ID, id)
			} else if p.CreatorID != u.ID {
				add(FOREIGN_POST, u.ID, id)
			}
		}
	}
	for _, p := range posts {
		creator, ok := byUser[p.CreatorID]
		if !ok || !utils.Contains(creator.Posts, p.ID) {
			add(UNLISTED_POST, p.CreatorID, p.ID)
		}
	}

	if c.Logger != nil {
		for _, f := range report.Findings {
			c.Logger.Warn("inconsistency found", "kind", string(f.Kind), "user_id", f.UserID, "ref_id", f.RefID)
		}
	}
	return report, nil
}
