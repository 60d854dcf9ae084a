package quill_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill"
)

type weatherArgs struct {
	City string `json:"city" jsonschema:"description=City to look up"`
	Days int    `json:"days,omitempty"`
}

func TestToolParametersFor(t *testing.T) {
	t.Parallel()
	transport, seen := requestRecorder(`{}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	err = manager.Tools.Insert(context.Background(), quill.InsertToolBody{
		ID:         "get_weather",
		Parameters: quill.ToolParametersFor[weatherArgs](),
	})
	require.NoError(t, err)

	body := decodeBody(t, (*seen)[0])
	var serialized string
	require.NoError(t, json.Unmarshal(body["parameters"], &serialized))

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(serialized), &schema))
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	city, ok := props["city"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "City to look up", city["description"])

	assert.Contains(t, schema["required"], "city")
	assert.NotContains(t, schema["required"], "days")
}

func TestFlattenSchema_ResolvesRootRef(t *testing.T) {
	t.Parallel()
	// The default reflector nests the struct under $defs behind a root
	// $ref.
	reflected := jsonschema.Reflect(weatherArgs{})
	require.NotEmpty(t, reflected.Ref)

	flat, err := quill.FlattenSchema(reflected)
	require.NoError(t, err)
	assert.Empty(t, flat.Ref)
	assert.Equal(t, "object", flat.Type)
	_, ok := flat.Properties.Get("city")
	assert.True(t, ok)
}

func TestFlattenSchema_PassthroughWithoutRef(t *testing.T) {
	t.Parallel()
	s := &jsonschema.Schema{Type: "object"}
	flat, err := quill.FlattenSchema(s)
	require.NoError(t, err)
	assert.Same(t, s, flat)
}

func TestFlattenSchema_MissingDefinition(t *testing.T) {
	t.Parallel()
	s := &jsonschema.Schema{
		Ref: "#/$defs/Missing",
		Definitions: map[string]*jsonschema.Schema{
			"Other": {Type: "object"},
		},
	}
	_, err := quill.FlattenSchema(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}
