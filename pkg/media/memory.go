package media

import (
	"context"
	"sync"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"
)

// Memory keeps blobs in a map. Set Fail to make uploads fail.
type Memory struct {
	mu      sync.Mutex
	blobs   map[string]model.Upload
	baseURL string
	Fail    error
}

func NewMemory(baseURL string) *Memory {
	return &Memory{blobs: map[string]model.Upload{}, baseURL: baseURL}
}

func (m *Memory) Upload(ctx context.Context, kind model.MediaKind, file model.Upload) (string, error) {
	if err := Check(kind, file); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return "", m.Fail
	}
	name := BlobName(file)
	file.Name = name
	file.ContentType = contentType(file)
	m.blobs[name] = file
	return URL(m.baseURL, name), nil
}

func (m *Memory) Fetch(ctx context.Context, name string) (model.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.blobs[name]
	if !ok {
		return model.Upload{}, apperr.NotFound("Image not found")
	}
	return file, nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
