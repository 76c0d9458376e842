// Package cache holds the read-through caches in front of the user store:
// creator projections in memcached and following sets in redis.
package cache

import (
	"context"

	"campusnet/pkg/model"
)

type CreatorCache interface {
	// GetCreators returns the cached projections among ids. Misses are
	// simply absent from the map.
	GetCreators(ctx context.Context, ids []string) (map[string]model.Creator, error)
	PutCreators(ctx context.Context, creators []model.Creator) error
	DropCreator(ctx context.Context, id string) error
}

type FollowingCache interface {
	// Following returns the cached following set of id and whether it was cached.
	Following(ctx context.Context, id string) ([]string, bool, error)
	PutFollowing(ctx context.Context, id string, following []string) error
	// UpdateFollowing adds or removes targetID in the cached set of id. An
	// uncached set is left uncached.
	UpdateFollowing(ctx context.Context, id string, targetID string, follows bool) error
	DropFollowing(ctx context.Context, ids ...string) error
}

// Nop caches nothing. Every read misses.
type Nop struct{}

func (Nop) GetCreators(context.Context, []string) (map[string]model.Creator, error) {
	return map[string]model.Creator{}, nil
}
func (Nop) PutCreators(context.Context, []model.Creator) error { return nil }
func (Nop) DropCreator(context.Context, string) error          { return nil }

func (Nop) Following(context.Context, string) ([]string, bool, error) { return nil, false, nil }
func (Nop) PutFollowing(context.Context, string, []string) error      { return nil }
func (Nop) UpdateFollowing(context.Context, string, string, bool) error { return nil }
func (Nop) DropFollowing(context.Context, ...string) error            { return nil }
