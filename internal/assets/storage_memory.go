package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// MemoryStorage keeps blobs in process memory. Used by tests and as the
// default store when no backend is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	content     []byte
	contentType string
}

var _ interfaces.ObjectStorage = (*MemoryStorage)(nil)

// NewMemoryStorage constructs an empty store publishing URLs under baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

// Put writes the blob, replacing any previous content at the key.
func (m *MemoryStorage) Put(_ context.Context, req interfaces.PutObjectRequest) (*interfaces.StoredObject, error) {
	key := strings.Trim(strings.TrimSpace(req.Key), "/")
	if key == "" {
		return nil, errors.New("assets: storage key is required")
	}
	if req.Content == nil {
		return nil, errors.New("assets: storage content is required")
	}
	content, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{content: content, contentType: req.ContentType}
	m.mu.Unlock()

	return &interfaces.StoredObject{
		Key:         key,
		URL:         m.baseURL + "/" + key,
		Size:        int64(len(content)),
		ContentType: req.ContentType,
	}, nil
}

// Delete removes the blob; missing keys are not an error.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, strings.Trim(strings.TrimSpace(key), "/"))
	m.mu.Unlock()
	return nil
}

// List returns stored objects under the prefix in key order.
func (m *MemoryStorage) List(_ context.Context, prefix string) ([]*interfaces.StoredObject, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*interfaces.StoredObject, 0)
	for key, obj := range m.objects {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, &interfaces.StoredObject{
			Key:         key,
			URL:         m.baseURL + "/" + key,
			Size:        int64(len(obj.content)),
			ContentType: obj.contentType,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Read returns a stored blob's content. Test helper; not part of the
// ObjectStorage contract.
func (m *MemoryStorage) Read(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[strings.Trim(strings.TrimSpace(key), "/")]
	if !ok {
		return nil, false
	}
	return bytes.Clone(obj.content), true
}
