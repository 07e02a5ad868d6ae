package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/seo"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	ErrRepositoryRequired = errors.New("projects: repository required")
	ErrOwnerRequired      = errors.New("projects: owner id is required")
	ErrTemplateRequired   = errors.New("projects: template slug is required")
	ErrProjectNotFound    = errors.New("projects: project not found")
	ErrSubdomainRequired  = errors.New("projects: subdomain is required")
	ErrSubdomainImmutable = errors.New("projects: subdomain cannot change once assigned")
	ErrPublishedHTMLEmpty = errors.New("projects: published html is empty")
)

// DefaultProjectName is used when a create request carries no name.
const DefaultProjectName = "Untitled Site"

// Service owns the project aggregate: creation, durable saves, and the
// publish lifecycle fields. Saves are last-write-wins and never touch
// lifecycle state; lifecycle state only moves through MarkPublished and
// MarkUnpublished.
type Service interface {
	Create(ctx context.Context, input CreateProjectInput) (*Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Project, error)
	List(ctx context.Context, ownerID string) ([]*Project, error)
	Save(ctx context.Context, input SaveProjectInput) (*Project, error)
	IsSubdomainTaken(ctx context.Context, subdomain string, exclude uuid.UUID) (bool, error)
	MarkPublished(ctx context.Context, id uuid.UUID, subdomain, html string) (*Project, error)
	MarkUnpublished(ctx context.Context, id uuid.UUID) (*Project, error)
}

// CreateProjectInput captures the information required to start a project.
type CreateProjectInput struct {
	OwnerID      string
	TemplateSlug string
	Name         string
	Snapshot     *document.Snapshot
	BusinessInfo domain.BusinessInfo
	SeoSettings  seo.Settings
}

// SaveProjectInput carries a durable save. Nil fields keep the stored value.
type SaveProjectInput struct {
	ProjectID    uuid.UUID
	Name         *string
	Snapshot     *document.Snapshot
	BusinessInfo *domain.BusinessInfo
	SeoSettings  *seo.Settings
}

// IDGenerator produces project IDs.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides project ID generation.
func WithIDGenerator(gen IDGenerator) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.id = gen
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo   Repository
	id     IDGenerator
	now    func() time.Time
	logger interfaces.Logger
}

// NewService constructs a project service instance.
func NewService(repo Repository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}

	s := &service{
		repo:   repo,
		id:     uuid.New,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	owner := strings.TrimSpace(input.OwnerID)
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	templateSlug := strings.TrimSpace(input.TemplateSlug)
	if templateSlug == "" {
		return nil, ErrTemplateRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DefaultProjectName
	}
	if err := input.SeoSettings.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Project{
		ID:           s.id(),
		OwnerID:      owner,
		TemplateSlug: templateSlug,
		Name:         name,
		Snapshot:     input.Snapshot.Clone(),
		BusinessInfo: input.BusinessInfo.Clone(),
		SeoSettings:  input.SeoSettings.Clone(),
		Status:       domain.StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("project created",
		"project_id", created.ID.String(),
		"owner_id", owner,
		"template", templateSlug,
	)
	return cloneProject(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	if id == uuid.Nil {
		return nil, ErrProjectNotFound
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return cloneProject(record), nil
}

func (s *service) GetBySubdomain(ctx context.Context, subdomain string) (*Project, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, ErrProjectNotFound
	}
	record, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return cloneProject(record), nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]*Project, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	records, err := s.repo.ListForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]*Project, 0, len(records))
	for _, record := range records {
		out = append(out, cloneProject(record))
	}
	return out, nil
}

// Save persists editor state. Concurrent saves resolve last-write-wins at
// the row level; lifecycle fields pass through untouched.
func (s *service) Save(ctx context.Context, input SaveProjectInput) (*Project, error) {
	if input.ProjectID == uuid.Nil {
		return nil, ErrProjectNotFound
	}
	record, err := s.repo.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != "" {
			record.Name = name
		}
	}
	if input.Snapshot != nil {
		record.Snapshot = input.Snapshot.Clone()
	}
	if input.BusinessInfo != nil {
		record.BusinessInfo = input.BusinessInfo.Clone()
	}
	if input.SeoSettings != nil {
		if err := input.SeoSettings.Validate(); err != nil {
			return nil, err
		}
		record.SeoSettings = input.SeoSettings.Clone()
	}
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return cloneProject(updated), nil
}

func (s *service) IsSubdomainTaken(ctx context.Context, subdomain string, exclude uuid.UUID) (bool, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return false, ErrSubdomainRequired
	}
	record, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	if record != nil && record.ID == exclude {
		return false, nil
	}
	return record != nil, nil
}

// MarkPublished transitions the project into serving rotation. The subdomain
// is assigned on first publish and stays fixed on every republish.
func (s *service) MarkPublished(ctx context.Context, id uuid.UUID, subdomain, html string) (*Project, error) {
	if id == uuid.Nil {
		return nil, ErrProjectNotFound
	}
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, ErrSubdomainRequired
	}
	if strings.TrimSpace(html) == "" {
		return nil, ErrPublishedHTMLEmpty
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if existing := record.SubdomainValue(); existing != "" && existing != subdomain {
		return nil, ErrSubdomainImmutable
	}

	next, err := record.Status.Transition(domain.StatusPublished)
	if err != nil {
		return nil, err
	}

	record.Status = next
	record.Subdomain = &subdomain
	record.PublishedHTML = &html
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info("project published",
		"project_id", updated.ID.String(),
		"subdomain", subdomain,
	)
	return cloneProject(updated), nil
}

// MarkUnpublished pulls the artifact out of serving rotation. The subdomain
// stays reserved so a later republish lands on the same address.
func (s *service) MarkUnpublished(ctx context.Context, id uuid.UUID) (*Project, error) {
	if id == uuid.Nil {
		return nil, ErrProjectNotFound
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	next, err := record.Status.Transition(domain.StatusUnpublished)
	if err != nil {
		return nil, err
	}

	record.Status = next
	record.PublishedHTML = nil
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info("project unpublished", "project_id", updated.ID.String())
	return cloneProject(updated), nil
}

func translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrProjectNotFound
	}
	return err
}
