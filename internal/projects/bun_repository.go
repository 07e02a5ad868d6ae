package projects

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewProjectRepository wires the go-repository-bun handlers for the project model.
func NewProjectRepository(db *bun.DB) repository.Repository[*Project] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Project]{
		NewRecord: func() *Project { return &Project{} },
		GetID: func(p *Project) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Project, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "subdomain"
		},
		GetIdentifierValue: func(p *Project) string {
			return p.SubdomainValue()
		},
	})
}

// BunRepository persists projects through bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Project]
}

// NewBunRepository constructs a bun-backed project repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache constructs a project repository with optional caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewProjectRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunRepository{db: db, repo: wrapped}
}

func (r *BunRepository) Create(ctx context.Context, record *Project) (*Project, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "project", id.String())
	}
	return result, nil
}

func (r *BunRepository) GetBySubdomain(ctx context.Context, subdomain string) (*Project, error) {
	result, err := r.repo.GetByIdentifier(ctx, subdomain)
	if err != nil {
		return nil, mapRepositoryError(err, "project", subdomain)
	}
	return result, nil
}

func (r *BunRepository) ListForOwner(ctx context.Context, ownerID string) ([]*Project, error) {
	var out []*Project
	err := r.db.NewSelect().
		Model(&out).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("project repository error: %w", err)
	}
	return out, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Project) (*Project, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "project", record.ID.String())
	}
	return updated, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
