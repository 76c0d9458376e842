package services

import (
	"context"
	"log/slog"

	"campusnet/pkg/cache"
	"campusnet/pkg/storage"

	"go.mongodb.org/mongo-driver/mongo"
)

// openMongo connects to mongodb and opens every store on the connection.
func openMongo(ctx context.Context, logger *slog.Logger, address string, port int) (*mongo.Client, storage.Stores, error) {
	client, err := storage.MongoDBClient(ctx, address, port)
	if err != nil {
		logger.Error(err.Error())
		return nil, storage.Stores{}, err
	}
	stores, err := storage.MongoStores(ctx, client)
	if err != nil {
		logger.Error("error opening mongodb stores", "msg", err.Error())
		return nil, storage.Stores{}, err
	}
	return client, stores, nil
}

// creatorCache uses memcached when an address is configured. An unreachable
// cache only costs extra mongodb reads, so it is replaced by Nop.
func creatorCache(logger *slog.Logger, address string, port int) cache.CreatorCache {
	if address == "" {
		return cache.Nop{}
	}
	client, err := storage.MemCachedClient(address, port)
	if err != nil {
		logger.Warn("running without creator cache", "msg", err.Error())
		return cache.Nop{}
	}
	return cache.NewMemcachedCreators(client)
}

// followingCache uses redis when an address is configured, with the same
// fallback as creatorCache.
func followingCache(ctx context.Context, logger *slog.Logger, address string, port int) cache.FollowingCache {
	if address == "" {
		return cache.Nop{}
	}
	client, err := storage.RedisClient(ctx, address, port)
	if err != nil {
		logger.Warn("running without following cache", "msg", err.Error())
		return cache.Nop{}
	}
	return cache.NewRedisFollowing(client)
}
