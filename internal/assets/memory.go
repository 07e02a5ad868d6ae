package assets

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	assets map[uuid.UUID]*Asset
}

// NewMemoryRepository creates an empty in-memory asset repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{assets: make(map[uuid.UUID]*Asset)}
}

// Create inserts the supplied asset.
func (m *MemoryRepository) Create(_ context.Context, record *Asset) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneAsset(record)
	m.assets[copied.ID] = copied
	return cloneAsset(copied), nil
}

// GetByID retrieves an asset by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.assets[id]
	if !ok {
		return nil, &NotFoundError{Resource: "asset", Key: id.String()}
	}
	return cloneAsset(rec), nil
}

// ListForProject returns the assets uploaded into the owner+project scope.
func (m *MemoryRepository) ListForProject(_ context.Context, ownerID, projectID string) ([]*Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Asset, 0)
	for _, rec := range m.assets {
		if rec.OwnerID == ownerID && rec.ProjectID == projectID {
			out = append(out, cloneAsset(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update replaces an existing asset record.
func (m *MemoryRepository) Update(_ context.Context, record *Asset) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "asset", Key: record.ID.String()}
	}
	copied := cloneAsset(record)
	m.assets[copied.ID] = copied
	return cloneAsset(copied), nil
}

func cloneAsset(src *Asset) *Asset {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
