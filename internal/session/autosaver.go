package session

import (
	"context"
	"time"

	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// DefaultAutosaveInterval is how often the autosaver checks for unsaved edits.
const DefaultAutosaveInterval = 30 * time.Second

// AutosaverOption configures the autosaver.
type AutosaverOption func(*Autosaver)

// WithInterval overrides the tick interval.
func WithInterval(interval time.Duration) AutosaverOption {
	return func(a *Autosaver) {
		if interval > 0 {
			a.interval = interval
		}
	}
}

// WithAutosaverLogger attaches a logger.
func WithAutosaverLogger(logger interfaces.Logger) AutosaverOption {
	return func(a *Autosaver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Autosaver drives periodic background saves for one session. Each tick is a
// no-op unless the session is dirty and the project exists; a failed save
// leaves the dirty flag set so the next tick retries.
type Autosaver struct {
	session  *Session
	interval time.Duration
	logger   interfaces.Logger
}

// NewAutosaver binds an autosaver to a session.
func NewAutosaver(session *Session, opts ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		session:  session,
		interval: DefaultAutosaveInterval,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run blocks until the context is cancelled, ticking at the configured
// interval. Callers typically run it in its own goroutine for the lifetime
// of the editing session.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick(ctx)
		}
	}
}

// Tick performs a single autosave pass. Exposed so callers with their own
// schedulers can drive the cadence.
func (a *Autosaver) Tick(ctx context.Context) {
	if err := a.session.Autosave(ctx); err != nil {
		a.logger.Warn("autosave failed",
			"project_id", a.session.ProjectID().String(),
			"error", err,
		)
	}
}
