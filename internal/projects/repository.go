package projects

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Repository abstracts storage operations for project aggregates.
type Repository interface {
	Create(ctx context.Context, record *Project) (*Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Project, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*Project, error)
	Update(ctx context.Context, record *Project) (*Project, error)
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
