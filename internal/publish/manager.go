package publish

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/generator"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/projects"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	ErrProjectsRequired   = errors.New("publish: project service required")
	ErrGeneratorRequired  = errors.New("publish: generator required")
	ErrURLBuilderRequired = errors.New("publish: url builder required")
	ErrSubdomainInvalid   = errors.New("publish: subdomain is invalid")
	ErrSubdomainReserved  = errors.New("publish: subdomain is reserved")
	ErrSubdomainTaken     = errors.New("publish: subdomain is already taken")
	ErrSubdomainMismatch  = errors.New("publish: subdomain differs from the one assigned at first publish")
)

const (
	subdomainMinLength = 3
	subdomainMaxLength = 63
)

// reservedSubdomains are platform-owned names no site can claim.
var reservedSubdomains = map[string]struct{}{
	"www":     {},
	"api":     {},
	"app":     {},
	"admin":   {},
	"assets":  {},
	"static":  {},
	"support": {},
}

// Request asks for a project to go live. Subdomain is required on first
// publish and optional afterwards, since the assigned one is permanent.
type Request struct {
	ProjectID uuid.UUID
	Subdomain string
}

// Result reports a completed publish.
type Result struct {
	Project  *projects.Project
	URL      string
	Checksum string
}

// ManagerOption configures a manager.
type ManagerOption func(*Manager)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager drives the publish lifecycle: subdomain validation and claiming,
// artifact regeneration, and the status transition, persisted in one update
// so a failed step leaves the project exactly as it was.
type Manager struct {
	projects projects.Service
	gen      *generator.Generator
	urls     *URLBuilder
	logger   interfaces.Logger
}

// NewManager wires the publish manager.
func NewManager(projectsSvc projects.Service, gen *generator.Generator, urls *URLBuilder, opts ...ManagerOption) (*Manager, error) {
	if projectsSvc == nil {
		return nil, ErrProjectsRequired
	}
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	if urls == nil {
		return nil, ErrURLBuilderRequired
	}
	m := &Manager{
		projects: projectsSvc,
		gen:      gen,
		urls:     urls,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Publish takes the project live at its subdomain. A first publish claims
// the requested subdomain; a republish regenerates from the current document
// and reuses the assigned one, which stays reserved even while unpublished.
func (m *Manager) Publish(ctx context.Context, req Request) (*Result, error) {
	project, err := m.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	subdomain, err := m.resolveSubdomain(ctx, project, req.Subdomain)
	if err != nil {
		return nil, err
	}

	html, err := m.gen.Generate(ctx, generator.Input{
		Snapshot:         project.Snapshot,
		Info:             project.BusinessInfo,
		Seo:              project.SeoSettings,
		ProjectID:        project.ID.String(),
		PublishSubdomain: subdomain,
	})
	if err != nil {
		return nil, err
	}

	updated, err := m.projects.MarkPublished(ctx, project.ID, subdomain, html)
	if err != nil {
		return nil, err
	}

	url, err := m.urls.PublishedURL(subdomain)
	if err != nil {
		return nil, err
	}

	m.logger.Info("site published",
		"project_id", updated.ID.String(),
		"subdomain", subdomain,
		"url", url,
	)
	return &Result{
		Project:  updated,
		URL:      url,
		Checksum: generator.Checksum(html),
	}, nil
}

// Unpublish pulls the site out of serving rotation. The subdomain stays
// assigned to the project so a later republish returns to the same address.
func (m *Manager) Unpublish(ctx context.Context, projectID uuid.UUID) (*projects.Project, error) {
	updated, err := m.projects.MarkUnpublished(ctx, projectID)
	if err != nil {
		return nil, err
	}
	m.logger.Info("site unpublished", "project_id", updated.ID.String())
	return updated, nil
}

// PublishedURL resolves the public URL for a subdomain.
func (m *Manager) PublishedURL(subdomain string) (string, error) {
	return m.urls.PublishedURL(subdomain)
}

// resolveSubdomain picks the subdomain a publish will use. The one assigned
// at first publish always wins; a conflicting request is an error rather
// than a silent rename.
func (m *Manager) resolveSubdomain(ctx context.Context, project *projects.Project, requested string) (string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))

	if assigned := project.SubdomainValue(); assigned != "" {
		if requested != "" && requested != assigned {
			return "", ErrSubdomainMismatch
		}
		return assigned, nil
	}

	normalized, err := NormalizeSubdomain(requested)
	if err != nil {
		return "", err
	}

	taken, err := m.projects.IsSubdomainTaken(ctx, normalized, project.ID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrSubdomainTaken
	}
	return normalized, nil
}

// NormalizeSubdomain lowercases and validates a requested subdomain. The
// input must already be in publishable shape; normalization never invents a
// different name than the one the user asked for.
func NormalizeSubdomain(requested string) (string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		return "", ErrSubdomainInvalid
	}
	normalized, err := slug.Normalize(requested)
	if err != nil || normalized != requested || !slug.IsValid(normalized) {
		return "", ErrSubdomainInvalid
	}
	if len(normalized) < subdomainMinLength || len(normalized) > subdomainMaxLength {
		return "", ErrSubdomainInvalid
	}
	if _, reserved := reservedSubdomains[normalized]; reserved {
		return "", ErrSubdomainReserved
	}
	return normalized, nil
}
