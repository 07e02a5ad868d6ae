package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema validates the persisted snapshot payload shape before the
// adapter accepts it into a session.
var snapshotSchema = map[string]any{
	"type":     "object",
	"required": []string{"root"},
	"properties": map[string]any{
		"version": map[string]any{"type": "integer", "minimum": 1},
		"root":    map[string]any{"$ref": "#/$defs/node"},
		"stylesheet": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"selector"},
				"properties": map[string]any{
					"selector":     map[string]any{"type": "string"},
					"declarations": map[string]any{"type": "string"},
				},
			},
		},
	},
	"$defs": map[string]any{
		"node": map[string]any{
			"type":     "object",
			"required": []string{"id", "tag"},
			"properties": map[string]any{
				"id":   map[string]any{"type": "string", "minLength": 1},
				"tag":  map[string]any{"type": "string", "minLength": 1},
				"text": map[string]any{"type": "string"},
				"html": map[string]any{"type": "string"},
				"attrs": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
				"children": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/$defs/node"},
				},
			},
		},
	},
}

var (
	compileSchemaOnce sync.Once
	compiledSchema    *jsonschema.Schema
	compileSchemaErr  error
)

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		raw, err := json.Marshal(snapshotSchema)
		if err != nil {
			compileSchemaErr = fmt.Errorf("document: marshal snapshot schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("snapshot.json", bytes.NewReader(raw)); err != nil {
			compileSchemaErr = fmt.Errorf("document: register snapshot schema: %w", err)
			return
		}
		compiledSchema, compileSchemaErr = compiler.Compile("snapshot.json")
	})
	return compiledSchema, compileSchemaErr
}

// ValidateSnapshotPayload checks a raw snapshot payload against the schema.
// Errors wrap ErrSnapshotInvalid so callers can branch without inspecting the
// schema library's error types.
func ValidateSnapshotPayload(payload []byte) error {
	schema, err := compiledSnapshotSchema()
	if err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return nil
}
