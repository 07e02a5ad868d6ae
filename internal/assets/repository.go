package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Repository abstracts storage operations for asset records.
type Repository interface {
	Create(ctx context.Context, record *Asset) (*Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	ListForProject(ctx context.Context, ownerID, projectID string) ([]*Asset, error)
	Update(ctx context.Context, record *Asset) (*Asset, error)
}

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
