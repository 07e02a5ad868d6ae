package assets

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewAssetRepository wires the go-repository-bun handlers for the asset model.
func NewAssetRepository(db *bun.DB) repository.Repository[*Asset] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Asset]{
		NewRecord: func() *Asset { return &Asset{} },
		GetID: func(a *Asset) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Asset, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "url"
		},
		GetIdentifierValue: func(a *Asset) string {
			return a.URL
		},
	})
}

// BunRepository persists assets through bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Asset]
}

// NewBunRepository constructs a bun-backed asset repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewAssetRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, record *Asset) (*Asset, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "asset", id.String())
	}
	return result, nil
}

func (r *BunRepository) ListForProject(ctx context.Context, ownerID, projectID string) ([]*Asset, error) {
	var out []*Asset
	err := r.db.NewSelect().
		Model(&out).
		Where("owner_id = ?", ownerID).
		Where("project_id = ?", projectID).
		Order("display_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("asset repository error: %w", err)
	}
	return out, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Asset) (*Asset, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "asset", record.ID.String())
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
