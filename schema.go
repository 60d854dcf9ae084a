package quill

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// ToolParameters is the schema describing a tool's arguments. Construct
// it from a pre-serialized JSON string, an arbitrary map, a reflected
// *jsonschema.Schema, or a Go type via ToolParametersFor.
type ToolParameters struct {
	raw    string
	object map[string]any
	schema *jsonschema.Schema
}

// ToolParametersJSON wraps an already-serialized JSON schema.
func ToolParametersJSON(s string) ToolParameters {
	return ToolParameters{raw: s}
}

// ToolParametersMap wraps a schema expressed as a plain map.
func ToolParametersMap(m map[string]any) ToolParameters {
	return ToolParameters{object: m}
}

// ToolParametersSchema wraps a reflected schema. A root $ref is
// flattened against the schema's definitions before serialization.
func ToolParametersSchema(s *jsonschema.Schema) ToolParameters {
	return ToolParameters{schema: s}
}

// ToolParametersFor reflects a JSON schema from a Go struct type,
// honoring json and jsonschema struct tags.
func ToolParametersFor[T any]() ToolParameters {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var zero T
	return ToolParameters{schema: reflector.Reflect(zero)}
}

func (p ToolParameters) serialize() (string, error) {
	switch {
	case p.raw != "":
		if !json.Valid([]byte(p.raw)) {
			return "", fmt.Errorf("invalid schema JSON")
		}
		return p.raw, nil
	case p.object != nil:
		encoded, err := json.Marshal(p.object)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	case p.schema != nil:
		flat, err := FlattenSchema(p.schema)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(flat)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	default:
		return "", fmt.Errorf("empty parameters")
	}
}

// FlattenSchema resolves a root-level $ref against the schema's own
// definitions, returning the referenced definition directly. Schemas
// without a root $ref pass through unchanged.
func FlattenSchema(s *jsonschema.Schema) (*jsonschema.Schema, error) {
	if s.Ref == "" || len(s.Definitions) == 0 {
		return s, nil
	}
	name := strings.TrimPrefix(s.Ref, "#/$defs/")
	name = strings.TrimPrefix(name, "#/definitions/")
	def, ok := s.Definitions[name]
	if !ok {
		return nil, fmt.Errorf("could not resolve definition: %s", name)
	}
	return def, nil
}
