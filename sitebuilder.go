package sitebuilder

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/assets"
	"github.com/goliatone/go-sitebuilder/internal/di"
	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/generator"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/projects"
	"github.com/goliatone/go-sitebuilder/internal/publish"
	"github.com/goliatone/go-sitebuilder/internal/seo"
	"github.com/goliatone/go-sitebuilder/internal/session"
	"github.com/goliatone/go-sitebuilder/internal/templates"
)

// ProjectService exports the project service contract for consumers of the
// sitebuilder package.
type ProjectService = projects.Service

// AssetService exports the asset service contract.
type AssetService = assets.Service

// Project exports the project aggregate.
type Project = projects.Project

// BusinessInfo exports the business facts record.
type BusinessInfo = domain.BusinessInfo

// SeoSettings exports the per-project SEO record.
type SeoSettings = seo.Settings

// Snapshot exports the serialized document form.
type Snapshot = document.Snapshot

// Seed exports a template catalog entry.
type Seed = templates.Seed

// Session exports the editing session type.
type Session = session.Session

// PublishResult exports the outcome of a publish.
type PublishResult = publish.Result

// Status values a project moves through.
const (
	StatusDraft       = domain.StatusDraft
	StatusPublished   = domain.StatusPublished
	StatusUnpublished = domain.StatusUnpublished
)

// Module is the top level builder runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a builder module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := container.LoadSeeds(); err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Projects returns the configured project service.
func (m *Module) Projects() ProjectService {
	return m.container.ProjectService()
}

// Assets returns the configured asset service.
func (m *Module) Assets() AssetService {
	return m.container.AssetService()
}

// Publisher returns the publish lifecycle manager.
func (m *Module) Publisher() *publish.Manager {
	return m.container.Publisher()
}

// Generator returns the static site generator.
func (m *Module) Generator() *generator.Generator {
	return m.container.Generator()
}

// Templates returns the seed template catalog.
func (m *Module) Templates() *templates.Catalog {
	return m.container.Catalog()
}

// SessionRequest describes the editing session to open. Either TemplateSlug
// (a new project cloned from that seed) or ProjectID (resume an existing
// project) drives the initial document.
type SessionRequest struct {
	OwnerID      string
	TemplateSlug string
	ProjectID    uuid.UUID
	Name         string
}

// NewSession opens an editing session: it resolves the starting document
// from the seed catalog or the stored project, wires placeholder
// substitution and dirty tracking, and loads the document into a fresh
// editing engine.
func (m *Module) NewSession(ctx context.Context, req SessionRequest) (*Session, error) {
	engine := document.NewMemoryEngine()

	cfg := session.Config{
		OwnerID:      req.OwnerID,
		TemplateSlug: req.TemplateSlug,
		ProjectID:    req.ProjectID,
		Name:         req.Name,
		AdapterOptions: []document.AdapterOption{
			document.WithSubstituter(m.container.Substituter()),
			document.WithLogger(logging.DocumentLogger(m.container.LoggerProvider())),
		},
	}

	source := document.Source{TemplateSlug: req.TemplateSlug}
	var info BusinessInfo
	var settings SeoSettings

	if req.ProjectID != uuid.Nil {
		project, err := m.Projects().Get(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		cfg.OwnerID = project.OwnerID
		cfg.TemplateSlug = project.TemplateSlug
		cfg.Name = project.Name
		source.Snapshot = project.Snapshot
		source.TemplateSlug = project.TemplateSlug
		info = project.BusinessInfo
		settings = project.SeoSettings
	} else {
		seed, err := m.Templates().Get(req.TemplateSlug)
		if err != nil {
			return nil, err
		}
		source.Snapshot = seed.Snapshot
		settings = seed.SeoDefaults
	}

	sess, err := session.New(engine, m.Projects(), m.Assets(), cfg,
		session.WithLogger(logging.SessionLogger(m.container.LoggerProvider())),
	)
	if err != nil {
		return nil, err
	}
	if err := sess.Adapter().Load(source); err != nil {
		return nil, err
	}
	if !info.IsZero() {
		if err := sess.SetBusinessInfo(info); err != nil {
			return nil, err
		}
	}
	if !settings.IsZero() {
		if err := sess.SetSeoSettings(settings); err != nil {
			return nil, err
		}
	}
	// Loading saved state is not an edit.
	sess.ClearDirty()
	return sess, nil
}

// StartAutosave runs a background autosaver for the session until the
// context is cancelled. Returns nil when autosave is disabled.
func (m *Module) StartAutosave(ctx context.Context, sess *Session) *session.Autosaver {
	cfg := m.container.Config
	if !cfg.Features.Autosave || !cfg.Autosave.Enabled {
		return nil
	}
	saver := session.NewAutosaver(sess,
		session.WithInterval(cfg.Autosave.Interval),
		session.WithAutosaverLogger(logging.SessionLogger(m.container.LoggerProvider())),
	)
	go saver.Run(ctx)
	return saver
}

// Close releases module resources.
func (m *Module) Close() error {
	return m.container.Close()
}
