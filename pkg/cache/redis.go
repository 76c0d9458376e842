package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const FOLLOWING_TTL = 10 * time.Minute

type redisFollowing struct {
	client *redis.Client
}

func NewRedisFollowing(client *redis.Client) FollowingCache {
	return &redisFollowing{client: client}
}

func followingKey(id string) string {
	return id + ":following"
}

// Following reads the set kept under "<id>:following". An empty set cannot be
// stored in redis, so users following nobody always miss.
func (r *redisFollowing) Following(ctx context.Context, id string) ([]string, bool, error) {
	members, err := r.client.SMembers(ctx, followingKey(id)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	return members, true, nil
}

func (r *redisFollowing) PutFollowing(ctx context.Context, id string, following []string) error {
	if len(following) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(following))
	for _, f := range following {
		members = append(members, f)
	}
	key := followingKey(id)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, FOLLOWING_TTL)
		return nil
	})
	return err
}

// UpdateFollowing applies a follow or unfollow to a cached set. The set is
// watched so a concurrent drop or refill makes the update fail with
// redis.TxFailedErr instead of recreating a partial set.
func (r *redisFollowing) UpdateFollowing(ctx context.Context, id string, targetID string, follows bool) error {
	key := followingKey(id)
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil || n == 0 {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if follows {
				pipe.SAdd(ctx, key, targetID)
			} else {
				pipe.SRem(ctx, key, targetID)
			}
			pipe.Expire(ctx, key, FOLLOWING_TTL)
			return nil
		})
		return err
	}, key)
}

func (r *redisFollowing) DropFollowing(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, followingKey(id))
	}
	return r.client.Del(ctx, keys...).Err()
}
