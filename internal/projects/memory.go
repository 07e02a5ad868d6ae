package projects

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu             sync.RWMutex
	projects       map[uuid.UUID]*Project
	subdomainIndex map[string]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory project repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		projects:       make(map[uuid.UUID]*Project),
		subdomainIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied project.
func (m *MemoryRepository) Create(_ context.Context, record *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneProject(record)
	m.projects[copied.ID] = copied
	if sub := copied.SubdomainValue(); sub != "" {
		m.subdomainIndex[sub] = copied.ID
	}
	return cloneProject(copied), nil
}

// GetByID retrieves a project by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.projects[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id.String()}
	}
	return cloneProject(rec), nil
}

// GetBySubdomain retrieves the project holding the subdomain.
func (m *MemoryRepository) GetBySubdomain(_ context.Context, subdomain string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.subdomainIndex[subdomain]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: subdomain}
	}
	return cloneProject(m.projects[id]), nil
}

// ListForOwner returns the owner's projects, most recently updated first.
func (m *MemoryRepository) ListForOwner(_ context.Context, ownerID string) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Project, 0)
	for _, rec := range m.projects {
		if rec.OwnerID == ownerID {
			out = append(out, cloneProject(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Update replaces an existing project record.
func (m *MemoryRepository) Update(_ context.Context, record *Project) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.projects[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: record.ID.String()}
	}
	if sub := existing.SubdomainValue(); sub != "" {
		delete(m.subdomainIndex, sub)
	}

	copied := cloneProject(record)
	m.projects[copied.ID] = copied
	if sub := copied.SubdomainValue(); sub != "" {
		m.subdomainIndex[sub] = copied.ID
	}
	return cloneProject(copied), nil
}

func cloneProject(src *Project) *Project {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Snapshot = src.Snapshot.Clone()
	copied.BusinessInfo = src.BusinessInfo.Clone()
	copied.SeoSettings = src.SeoSettings.Clone()
	if src.Subdomain != nil {
		sub := *src.Subdomain
		copied.Subdomain = &sub
	}
	if src.PublishedHTML != nil {
		html := *src.PublishedHTML
		copied.PublishedHTML = &html
	}
	return &copied
}
