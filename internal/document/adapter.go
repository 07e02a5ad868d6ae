package document

import (
	"errors"
	"strings"

	"github.com/goliatone/go-sitebuilder/internal/domain"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	// ErrSubstituterRequired indicates ApplyBusinessInfo ran without a
	// substitution engine configured.
	ErrSubstituterRequired = errors.New("document: substitution engine not configured")
	// ErrSourceRequired indicates Load was called with neither a snapshot nor
	// seed markup.
	ErrSourceRequired = errors.New("document: load requires a snapshot or seed markup")
)

// Substituter rewrites placeholder tokens in a snapshot. Implemented by the
// placeholder engine; injected so the adapter stays decoupled from token
// semantics. ApplyInPlace reports whether anything changed.
type Substituter interface {
	ApplyInPlace(snapshot *Snapshot, info domain.BusinessInfo) bool
}

// mutableEngine is an optional engine extension for in-place edits that
// preserve editor-local history. Engines without it get a serialize/load
// round trip instead.
type mutableEngine interface {
	Mutate(edit func(*Snapshot)) error
}

// Source describes what to load into an editing session: a prior structured
// snapshot, or a legacy HTML seed (body markup plus extracted stylesheet).
type Source struct {
	Snapshot     *Snapshot
	SeedHTML     string
	TemplateSlug string
}

// AdapterOption configures an Adapter at construction time.
type AdapterOption func(*Adapter)

// WithSubstituter wires the placeholder substitution engine.
func WithSubstituter(sub Substituter) AdapterOption {
	return func(a *Adapter) {
		if sub != nil {
			a.substituter = sub
		}
	}
}

// WithDirtyNotifier registers the callback raised exactly once per logical
// change batch. The session layer uses it to drive the dirty flag.
func WithDirtyNotifier(notify func()) AdapterOption {
	return func(a *Adapter) {
		a.notifyDirty = notify
	}
}

// WithLogger attaches a logger to the adapter.
func WithLogger(logger interfaces.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter wraps the external editing engine behind a snapshot-oriented
// contract. It never assumes engine internals beyond "a tree of styled nodes
// with text/attribute leaves", so the engine stays swappable.
type Adapter struct {
	engine      interfaces.EditingEngine
	substituter Substituter
	notifyDirty func()
	logger      interfaces.Logger
	loaded      bool
}

// NewAdapter wraps the provided engine. Passing nil installs the in-process
// memory engine.
func NewAdapter(engine interfaces.EditingEngine, opts ...AdapterOption) *Adapter {
	if engine == nil {
		engine = NewMemoryEngine()
	}
	adapter := &Adapter{
		engine: engine,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

// Load initializes the working document from a snapshot or legacy seed HTML.
// Loading is not a mutation: it does not raise the dirty flag. A parse failure
// surfaces immediately and the session must not initialize.
func (a *Adapter) Load(src Source) error {
	snapshot := src.Snapshot
	if snapshot == nil {
		if strings.TrimSpace(src.SeedHTML) == "" {
			return ErrSourceRequired
		}
		imported, err := ImportHTML(src.TemplateSlug, src.SeedHTML)
		if err != nil {
			return err
		}
		snapshot = imported
	}

	payload, err := snapshot.Encode()
	if err != nil {
		return err
	}
	if err := a.engine.Load(payload); err != nil {
		return err
	}
	a.loaded = true
	a.logger.Debug("document.load", "nodes", countNodes(snapshot))
	return nil
}

// Loaded reports whether a document is active.
func (a *Adapter) Loaded() bool {
	return a.loaded
}

// Serialize captures the current document as an immutable snapshot.
func (a *Adapter) Serialize() (*Snapshot, error) {
	if !a.loaded {
		return nil, ErrNoDocument
	}
	payload, err := a.engine.Serialize()
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// Apply runs one logical change batch against the document and raises the
// dirty notification exactly once, regardless of how many nodes the batch
// touches. Failed batches raise nothing.
func (a *Adapter) Apply(batch func(*Snapshot)) error {
	if batch == nil {
		return nil
	}
	if !a.loaded {
		return ErrNoDocument
	}

	if mutable, ok := a.engine.(mutableEngine); ok {
		if err := mutable.Mutate(batch); err != nil {
			return err
		}
		a.markDirty()
		return nil
	}

	snapshot, err := a.Serialize()
	if err != nil {
		return err
	}
	batch(snapshot)
	payload, err := snapshot.Encode()
	if err != nil {
		return err
	}
	if err := a.engine.Load(payload); err != nil {
		return err
	}
	a.markDirty()
	return nil
}

// ApplyBusinessInfo substitutes placeholder tokens with the supplied business
// facts as a single change batch. A no-op substitution (nothing matched, or
// the info is empty) leaves the dirty flag and the edit history untouched.
func (a *Adapter) ApplyBusinessInfo(info domain.BusinessInfo) error {
	if a.substituter == nil {
		return ErrSubstituterRequired
	}
	if !a.loaded {
		return ErrNoDocument
	}

	substituted, err := a.Serialize()
	if err != nil {
		return err
	}
	if !a.substituter.ApplyInPlace(substituted, info) {
		return nil
	}

	// Mutating preserves the engine's undo history; reloading would reset it.
	if mutable, ok := a.engine.(mutableEngine); ok {
		if err := mutable.Mutate(func(snapshot *Snapshot) {
			*snapshot = *substituted
		}); err != nil {
			return err
		}
		a.markDirty()
		return nil
	}

	payload, err := substituted.Encode()
	if err != nil {
		return err
	}
	if err := a.engine.Load(payload); err != nil {
		return err
	}
	a.markDirty()
	return nil
}

// ExportStandaloneHTML renders the document without the editing engine
// runtime attached.
func (a *Adapter) ExportStandaloneHTML() (string, error) {
	if !a.loaded {
		return "", ErrNoDocument
	}
	return a.engine.ExportStandaloneHTML()
}

// Undo delegates to the engine's editor-local history.
func (a *Adapter) Undo() bool {
	if !a.loaded {
		return false
	}
	if a.engine.Undo() {
		a.markDirty()
		return true
	}
	return false
}

// Redo delegates to the engine's editor-local history.
func (a *Adapter) Redo() bool {
	if !a.loaded {
		return false
	}
	if a.engine.Redo() {
		a.markDirty()
		return true
	}
	return false
}

func (a *Adapter) markDirty() {
	if a.notifyDirty != nil {
		a.notifyDirty()
	}
}

func countNodes(snapshot *Snapshot) int {
	count := 0
	snapshot.Walk(func(*Node) { count++ })
	return count
}
