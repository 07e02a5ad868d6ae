package interfaces

// EditingEngine is the capability surface the builder requires from the visual
// page-editing engine. The engine owns canvas rendering, block palettes and
// style panels; this module only loads documents into it, captures snapshots
// back out, and asks it for a standalone HTML export. Implementations must not
// leak engine-internal node types through this interface.
type EditingEngine interface {
	// Load replaces the engine's working document with the serialized snapshot.
	Load(snapshot []byte) error
	// Serialize captures the engine's working document as a snapshot payload.
	// A capture is immutable; a later capture replaces it, never merges.
	Serialize() ([]byte, error)
	// ExportStandaloneHTML renders the working document as a self-contained
	// HTML fragment (body markup plus stylesheet) without engine runtime code.
	ExportStandaloneHTML() (string, error)
	// Undo and Redo step the engine's editor-local history. They are advisory;
	// engines without history return false.
	Undo() bool
	Redo() bool
}
