package document

import (
	"errors"
	"sync"

	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// ErrNoDocument indicates an engine operation before any document was loaded.
var ErrNoDocument = errors.New("document: no document loaded")

// MemoryEngine is an in-process implementation of the editing-engine
// capability surface. The production canvas runs in the browser; this engine
// backs server-side flows (tests, seed imports, programmatic edits) with the
// same contract, including editor-local undo/redo.
type MemoryEngine struct {
	mu      sync.Mutex
	current *Snapshot
	undo    []*Snapshot
	redo    []*Snapshot
}

var _ interfaces.EditingEngine = (*MemoryEngine)(nil)

// NewMemoryEngine returns an engine with no document loaded.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{}
}

// Load replaces the working document. Loading resets edit history; history is
// editor local and does not survive a document swap.
func (e *MemoryEngine) Load(payload []byte) error {
	snapshot, err := Decode(payload)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = snapshot
	e.undo = nil
	e.redo = nil
	return nil
}

// Serialize captures the working document.
func (e *MemoryEngine) Serialize() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil, ErrNoDocument
	}
	return e.current.Encode()
}

// Mutate applies an edit to the working document and records the prior state
// on the undo stack. The adapter routes all programmatic changes through this.
func (e *MemoryEngine) Mutate(edit func(*Snapshot)) error {
	if edit == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return ErrNoDocument
	}

	next := e.current.Clone()
	edit(next)
	e.undo = append(e.undo, e.current)
	e.redo = nil
	e.current = next
	return nil
}

// Undo steps back one edit. Returns false when there is nothing to undo.
func (e *MemoryEngine) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.undo) == 0 {
		return false
	}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.current)
	e.current = last
	return true
}

// Redo reapplies the most recently undone edit.
func (e *MemoryEngine) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.redo) == 0 {
		return false
	}
	last := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, e.current)
	e.current = last
	return true
}

// ExportStandaloneHTML renders the working document as body markup plus an
// inline stylesheet, with no engine runtime attached.
func (e *MemoryEngine) ExportStandaloneHTML() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return "", ErrNoDocument
	}

	body := RenderBody(e.current)
	styles := RenderStylesheet(e.current)
	if styles == "" {
		return body, nil
	}
	return "<style>\n" + styles + "</style>\n" + body, nil
}
