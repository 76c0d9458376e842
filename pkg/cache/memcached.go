package cache

import (
	"context"
	"encoding/json"

	"campusnet/pkg/model"

	"github.com/bradfitz/gomemcache/memcache"
)

const CREATOR_TTL_SECONDS = 600

type memcachedCreators struct {
	client *memcache.Client
}

func NewMemcachedCreators(client *memcache.Client) CreatorCache {
	return &memcachedCreators{client: client}
}

func creatorKey(id string) string {
	return "creator:" + id
}

func (m *memcachedCreators) GetCreators(ctx context.Context, ids []string) (map[string]model.Creator, error) {
	creators := make(map[string]model.Creator, len(ids))
	if len(ids) == 0 {
		return creators, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, creatorKey(id))
	}
	items, err := m.client.GetMulti(keys)
	if err != nil {
		return creators, err
	}
	for _, item := range items {
		var creator model.Creator
		if err := json.Unmarshal(item.Value, &creator); err != nil {
			continue
		}
		creators[creator.ID] = creator
	}
	return creators, nil
}

func (m *memcachedCreators) PutCreators(ctx context.Context, creators []model.Creator) error {
	for _, creator := range creators {
		value, err := json.Marshal(creator)
		if err != nil {
			return err
		}
		item := &memcache.Item{Key: creatorKey(creator.ID), Value: value, Expiration: CREATOR_TTL_SECONDS}
		if err := m.client.Set(item); err != nil {
			return err
		}
	}
	return nil
}

func (m *memcachedCreators) DropCreator(ctx context.Context, id string) error {
	err := m.client.Delete(creatorKey(id))
	if err == memcache.ErrCacheMiss {
		return nil
	}
	return err
}
