package quill_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill"
)

func TestToolsNamespace_InsertSerializesParameters(t *testing.T) {
	t.Parallel()
	transport, seen := requestRecorder(`{}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	err = manager.Tools.Insert(context.Background(), quill.InsertToolBody{
		ID:          "get_weather",
		Description: "Look up the weather",
		Parameters: quill.ToolParametersMap(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{"type": "string"},
			},
		}),
		Code: "function run() {}",
	})
	require.NoError(t, err)

	req := (*seen)[0]
	assert.Equal(t, "/v1/collections/col-1/tools/insert", req.Path)
	assert.Equal(t, quill.TargetWriter, req.Target)

	body := decodeBody(t, req)
	// Parameters travel as a serialized JSON string.
	var params string
	require.NoError(t, json.Unmarshal(body["parameters"], &params))
	assert.JSONEq(t, `{"type":"object","properties":{"city":{"type":"string"}}}`, params)
}

func TestToolsNamespace_InsertRejectsInvalidJSON(t *testing.T) {
	t.Parallel()
	transport, seen := requestRecorder(`{}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	err = manager.Tools.Insert(context.Background(), quill.InsertToolBody{
		ID:         "bad",
		Parameters: quill.ToolParametersJSON(`{"type":`),
	})
	require.Error(t, err)
	assert.Empty(t, *seen)
}

func TestToolsNamespace_Get(t *testing.T) {
	t.Parallel()
	transport, seen := requestRecorder(`{"tool":{"id":"get_weather","description":"d","parameters":"{}"}}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	tool, err := manager.Tools.Get(context.Background(), "get_weather")
	require.NoError(t, err)
	assert.Equal(t, "get_weather", tool.ID)

	req := (*seen)[0]
	assert.Equal(t, "/v1/collections/col-1/tools/get", req.Path)
	assert.Equal(t, "get_weather", req.Params.Get("tool_id"))
}

func TestToolsNamespace_ExecuteUnwrapsResults(t *testing.T) {
	t.Parallel()
	// The backend double-encodes result payloads as JSON strings.
	transport, seen := requestRecorder(`{
		"results": [
			{"functionResult": {"tool_id": "get_weather", "result": "{\"temp\":21}"}},
			{"functionParameters": {"tool_id": "book_table", "result": "{\"seats\":4}"}}
		]
	}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	results, err := manager.Tools.Execute(context.Background(), quill.ExecuteToolsBody{
		Messages: []quill.Message{{Role: quill.RoleUser, Content: "weather in Kraków?"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.NotNil(t, results[0].FunctionResult)
	assert.Equal(t, "get_weather", results[0].FunctionResult.ToolID)
	assert.JSONEq(t, `{"temp":21}`, string(results[0].FunctionResult.Result))
	assert.Nil(t, results[0].FunctionParameters)

	require.NotNil(t, results[1].FunctionParameters)
	assert.Equal(t, "book_table", results[1].FunctionParameters.ToolID)
	assert.JSONEq(t, `{"seats":4}`, string(results[1].FunctionParameters.Result))

	req := (*seen)[0]
	assert.Equal(t, "/v1/collections/col-1/tools/run", req.Path)
	assert.Equal(t, quill.TargetReader, req.Target)
}

func TestToolsNamespace_ExecuteRejectsMangledPayload(t *testing.T) {
	t.Parallel()
	transport, _ := requestRecorder(`{
		"results": [
			{"functionResult": {"tool_id": "get_weather", "result": "{not json"}}
		]
	}`)
	manager, err := quill.NewCollectionManager(transport, "col-1")
	require.NoError(t, err)

	_, err = manager.Tools.Execute(context.Background(), quill.ExecuteToolsBody{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get_weather")
}
