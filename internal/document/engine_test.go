package document

import (
	"errors"
	"strings"
	"testing"
)

func loadEngine(t *testing.T, snapshot *Snapshot) *MemoryEngine {
	t.Helper()
	engine := NewMemoryEngine()
	payload, err := snapshot.Encode()
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}
	if err := engine.Load(payload); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return engine
}

func currentHeadline(t *testing.T, engine *MemoryEngine) string {
	t.Helper()
	payload, err := engine.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	snapshot, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	node := snapshot.FindByID("headline")
	if node == nil {
		t.Fatalf("headline node missing")
	}
	return node.Text
}

func TestMemoryEngineRequiresDocument(t *testing.T) {
	engine := NewMemoryEngine()
	if _, err := engine.Serialize(); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("serialize: got %v, want %v", err, ErrNoDocument)
	}
	if err := engine.Mutate(func(*Snapshot) {}); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("mutate: got %v, want %v", err, ErrNoDocument)
	}
	if _, err := engine.ExportStandaloneHTML(); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("export: got %v, want %v", err, ErrNoDocument)
	}
}

func TestMemoryEngineUndoRedo(t *testing.T) {
	engine := loadEngine(t, sampleSnapshot())

	edit := func(text string) {
		err := engine.Mutate(func(snapshot *Snapshot) {
			snapshot.FindByID("headline").Text = text
		})
		if err != nil {
			t.Fatalf("mutate: %v", err)
		}
	}

	edit("First Edit")
	edit("Second Edit")

	if !engine.Undo() {
		t.Fatalf("undo returned false with history available")
	}
	if got := currentHeadline(t, engine); got != "First Edit" {
		t.Fatalf("after undo headline = %q", got)
	}

	if !engine.Redo() {
		t.Fatalf("redo returned false after undo")
	}
	if got := currentHeadline(t, engine); got != "Second Edit" {
		t.Fatalf("after redo headline = %q", got)
	}

	if engine.Redo() {
		t.Fatalf("redo succeeded with nothing undone")
	}
}

func TestMemoryEngineMutateClearsRedo(t *testing.T) {
	engine := loadEngine(t, sampleSnapshot())

	if err := engine.Mutate(func(s *Snapshot) { s.FindByID("headline").Text = "One" }); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !engine.Undo() {
		t.Fatalf("undo failed")
	}
	if err := engine.Mutate(func(s *Snapshot) { s.FindByID("headline").Text = "Two" }); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if engine.Redo() {
		t.Fatalf("redo survived a new edit")
	}
}

func TestMemoryEngineLoadResetsHistory(t *testing.T) {
	engine := loadEngine(t, sampleSnapshot())
	if err := engine.Mutate(func(s *Snapshot) { s.FindByID("headline").Text = "Edited" }); err != nil {
		t.Fatalf("mutate: %v", err)
	}

	payload, err := sampleSnapshot().Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := engine.Load(payload); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if engine.Undo() {
		t.Fatalf("history survived a document swap")
	}
}

func TestMemoryEngineExportStandaloneHTML(t *testing.T) {
	engine := loadEngine(t, sampleSnapshot())

	markup, err := engine.ExportStandaloneHTML()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(markup, "<style>\n") {
		t.Fatalf("export missing inline stylesheet:\n%s", markup)
	}
	if !strings.Contains(markup, ".hero {") {
		t.Fatalf("export missing rule:\n%s", markup)
	}
	if !strings.Contains(markup, "Fresh Bread &amp; Pastries") {
		t.Fatalf("export missing body copy:\n%s", markup)
	}
	if strings.Contains(markup, "<script") {
		t.Fatalf("export carries runtime markup:\n%s", markup)
	}
}
