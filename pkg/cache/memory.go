package cache

import (
	"context"
	"sync"

	"campusnet/pkg/model"
	"campusnet/pkg/utils"
)

// Memory is a process local CreatorCache and FollowingCache.
type Memory struct {
	mu        sync.Mutex
	creators  map[string]model.Creator
	following map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		creators:  map[string]model.Creator{},
		following: map[string][]string{},
	}
}

func (m *Memory) GetCreators(ctx context.Context, ids []string) (map[string]model.Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Creator, len(ids))
	for _, id := range ids {
		if c, ok := m.creators[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *Memory) PutCreators(ctx context.Context, creators []model.Creator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range creators {
		m.creators[c.ID] = c
	}
	return nil
}

func (m *Memory) DropCreator(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creators, id)
	return nil
}

func (m *Memory) Following(ctx context.Context, id string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.following[id]
	if !ok {
		return nil, false, nil
	}
	return append([]string{}, f...), true, nil
}

func (m *Memory) PutFollowing(ctx context.Context, id string, following []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.following[id] = append([]string{}, following...)
	return nil
}

func (m *Memory) UpdateFollowing(ctx context.Context, id string, targetID string, follows bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.following[id]
	if !ok {
		return nil
	}
	f = utils.Without(f, targetID)
	if follows {
		f = append(f, targetID)
	}
	m.following[id] = f
	return nil
}

func (m *Memory) DropFollowing(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.following, id)
	}
	return nil
}
