package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/assets"
	"github.com/goliatone/go-sitebuilder/internal/document"
	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/projects"
	"github.com/goliatone/go-sitebuilder/internal/seo"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	ErrEngineRequired   = errors.New("session: editing engine required")
	ErrProjectsRequired = errors.New("session: project service required")
	ErrOwnerRequired    = errors.New("session: owner id is required")
	ErrTemplateRequired = errors.New("session: template slug is required")
)

// Config seeds a session. ProjectID is uuid.Nil for a project that has never
// been saved; the first SaveNow creates the row and adopts its id.
type Config struct {
	OwnerID        string
	TemplateSlug   string
	ProjectID      uuid.UUID
	Name           string
	AdapterOptions []document.AdapterOption
}

// Option configures a session at construction time.
type Option func(*Session)

// WithClock overrides the time source used for autosave stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfirmNavigation installs the hook consulted when the user tries to
// leave while unsaved edits exist. The hook is advisory: returning true lets
// navigation proceed with edits discarded.
func WithConfirmNavigation(confirm func() bool) Option {
	return func(s *Session) {
		s.confirmNavigation = confirm
	}
}

// Session tracks one owner editing one project: the live document adapter,
// the unsaved-changes flag, and the durable save path shared by autosave,
// the manual save action, and the save keyboard shortcut.
type Session struct {
	adapter  *document.Adapter
	projects projects.Service
	assets   assets.Service

	ownerID      string
	templateSlug string

	mu        sync.Mutex
	projectID uuid.UUID
	name      string
	info      domain.BusinessInfo
	seo       seo.Settings
	dirty     bool
	dirtySeq  uint64
	saving    bool
	lastSave  time.Time

	confirmNavigation func() bool
	now               func() time.Time
	logger            interfaces.Logger
}

// New builds a session and its document adapter. The adapter's dirty
// notifications feed the session's unsaved-changes flag, so every document
// edit, undo, and redo marks the session dirty.
func New(engine interfaces.EditingEngine, projectsSvc projects.Service, assetsSvc assets.Service, cfg Config, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if projectsSvc == nil {
		return nil, ErrProjectsRequired
	}
	owner := strings.TrimSpace(cfg.OwnerID)
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	templateSlug := strings.TrimSpace(cfg.TemplateSlug)
	if templateSlug == "" {
		return nil, ErrTemplateRequired
	}

	s := &Session{
		projects:     projectsSvc,
		assets:       assetsSvc,
		ownerID:      owner,
		templateSlug: templateSlug,
		projectID:    cfg.ProjectID,
		name:         strings.TrimSpace(cfg.Name),
		now:          time.Now,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}

	adapterOpts := append([]document.AdapterOption{
		document.WithDirtyNotifier(s.MarkDirty),
	}, cfg.AdapterOptions...)
	s.adapter = document.NewAdapter(engine, adapterOpts...)

	return s, nil
}

// Adapter exposes the session's document adapter for editing operations.
func (s *Session) Adapter() *document.Adapter {
	return s.adapter
}

// ProjectID returns the persisted project id, or uuid.Nil before first save.
func (s *Session) ProjectID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Dirty reports whether unsaved edits exist.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastSavedAt returns the time of the most recent successful save.
func (s *Session) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// MarkDirty flags unsaved edits. Safe from any goroutine.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	s.dirtySeq++
}

// ClearDirty resets the unsaved-edits flag. Used after seeding a session
// with persisted state, which is not an edit.
func (s *Session) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.dirtySeq++
}

// SetName records a new project name.
func (s *Session) SetName(name string) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" || name == s.name {
		return
	}
	s.name = name
	s.dirty = true
	s.dirtySeq++
}

// SetBusinessInfo stores the business facts and substitutes them into the
// document. The stored copy is saved alongside the snapshot so placeholder
// substitution can re-run against future template changes.
func (s *Session) SetBusinessInfo(info domain.BusinessInfo) error {
	s.mu.Lock()
	s.info = info.Clone()
	s.dirty = true
	s.dirtySeq++
	s.mu.Unlock()

	return s.adapter.ApplyBusinessInfo(info)
}

// SetSeoSettings validates and stores SEO settings for the next save.
func (s *Session) SetSeoSettings(settings seo.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seo = settings.Clone()
	s.dirty = true
	s.dirtySeq++
	return nil
}

// BusinessInfo returns the session's current business facts.
func (s *Session) BusinessInfo() domain.BusinessInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.Clone()
}

// SeoSettings returns the session's current SEO settings.
func (s *Session) SeoSettings() seo.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seo.Clone()
}

// SaveNow persists the full editor state regardless of the dirty flag. The
// manual save action and the save shortcut both land here. A save already in
// flight makes this a no-op so rapid repeat saves collapse into one write.
func (s *Session) SaveNow(ctx context.Context) error {
	return s.save(ctx, false)
}

// Autosave persists only when unsaved edits exist on an already-created
// project. The autosaver calls this on every tick; a clean session or an
// in-flight save makes the tick a no-op.
func (s *Session) Autosave(ctx context.Context) error {
	return s.save(ctx, true)
}

func (s *Session) save(ctx context.Context, autosave bool) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil
	}
	if autosave && (!s.dirty || s.projectID == uuid.Nil) {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	seq := s.dirtySeq
	projectID := s.projectID
	name := s.name
	info := s.info.Clone()
	settings := s.seo.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	snapshot, err := s.adapter.Serialize()
	if err != nil {
		return err
	}

	if projectID == uuid.Nil {
		created, err := s.projects.Create(ctx, projects.CreateProjectInput{
			OwnerID:      s.ownerID,
			TemplateSlug: s.templateSlug,
			Name:         name,
			Snapshot:     snapshot,
			BusinessInfo: info,
			SeoSettings:  settings,
		})
		if err != nil {
			return err
		}
		projectID = created.ID
		s.claimAssets(ctx, projectID)
	} else {
		if _, err := s.projects.Save(ctx, projects.SaveProjectInput{
			ProjectID:    projectID,
			Name:         optionalString(name),
			Snapshot:     snapshot,
			BusinessInfo: &info,
			SeoSettings:  &settings,
		}); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.projectID = projectID
	if s.dirtySeq == seq {
		s.dirty = false
	}
	s.lastSave = s.now().UTC()
	s.mu.Unlock()

	s.logger.Debug("session saved",
		"project_id", projectID.String(),
		"autosave", autosave,
	)
	return nil
}

// claimAssets re-homes uploads made before the first save. Best effort: a
// failed claim leaves the files addressable at their unsaved key.
func (s *Session) claimAssets(ctx context.Context, projectID uuid.UUID) {
	if s.assets == nil {
		return
	}
	moved, err := s.assets.Claim(ctx, s.ownerID, projectID.String())
	if err != nil {
		s.logger.Warn("asset claim failed",
			"project_id", projectID.String(),
			"error", err,
		)
		return
	}
	if moved > 0 {
		s.logger.Debug("assets claimed",
			"project_id", projectID.String(),
			"count", moved,
		)
	}
}

// CanNavigateAway reports whether leaving the editor loses work. When unsaved
// edits exist and a confirmation hook is installed, the hook decides.
func (s *Session) CanNavigateAway() bool {
	s.mu.Lock()
	dirty := s.dirty
	confirm := s.confirmNavigation
	s.mu.Unlock()

	if !dirty {
		return true
	}
	if confirm != nil {
		return confirm()
	}
	return false
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
