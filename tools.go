package quill

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a callable function the backend can invoke while answering.
type Tool struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Parameters  string `json:"parameters"` // JSON schema, serialized
	Code        string `json:"code,omitempty"`
}

// InsertToolBody describes a tool to register. Parameters accepts a
// pre-serialized JSON schema string, an arbitrary map, or a
// *jsonschema.Schema reflected from a Go type; see ToolParameters.
type InsertToolBody struct {
	ID          string
	Description string
	Parameters  ToolParameters
	Code        string
}

// ToolsNamespace manages and executes a collection's tools.
type ToolsNamespace struct {
	transport    Transport
	collectionID string
}

// Insert registers a tool.
func (n *ToolsNamespace) Insert(ctx context.Context, tool InsertToolBody) error {
	params, err := tool.Parameters.serialize()
	if err != nil {
		return fmt.Errorf("quill: tool parameters: %w", err)
	}
	body := Tool{
		ID:          tool.ID,
		Description: tool.Description,
		Parameters:  params,
		Code:        tool.Code,
	}
	_, err = n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/tools/insert", n.collectionID),
		Body:        body,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Get returns one tool by id.
func (n *ToolsNamespace) Get(ctx context.Context, id string) (*Tool, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/tools/get", n.collectionID),
		Params:      queryParams("tool_id", id),
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, err
	}
	var response struct {
		Tool Tool `json:"tool"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode tool: %w", err)
	}
	return &response.Tool, nil
}

// GetAll returns every tool in the collection.
func (n *ToolsNamespace) GetAll(ctx context.Context) ([]Tool, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/tools/all", n.collectionID),
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, err
	}
	var response struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode tools: %w", err)
	}
	return response.Tools, nil
}

// Update replaces a registered tool.
func (n *ToolsNamespace) Update(ctx context.Context, tool Tool) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/tools/update", n.collectionID),
		Body:        tool,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Delete removes a tool.
func (n *ToolsNamespace) Delete(ctx context.Context, id string) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/tools/delete", n.collectionID),
		Body:        map[string]string{"id": id},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// ExecuteToolsBody carries a conversation for the backend to run tools
// against. ToolIDs narrows the candidate set; empty means all.
type ExecuteToolsBody struct {
	Messages  []Message  `json:"messages"`
	ToolIDs   []string   `json:"tool_ids,omitempty"`
	LLMConfig *LLMConfig `json:"llm_config,omitempty"`
}

// FunctionCall pairs a tool id with its JSON payload.
type FunctionCall struct {
	ToolID string          `json:"tool_id"`
	Result json.RawMessage `json:"result"`
}

// ToolExecutionResult is one outcome from Execute: either a completed
// function result or the parameters the model wants the caller to run.
type ToolExecutionResult struct {
	FunctionResult     *FunctionCall `json:"functionResult,omitempty"`
	FunctionParameters *FunctionCall `json:"functionParameters,omitempty"`
}

// Execute runs tools server-side against the given conversation. The
// backend double-encodes each result payload as a JSON string; Execute
// unwraps it so callers get plain JSON.
func (n *ToolsNamespace) Execute(ctx context.Context, body ExecuteToolsBody) ([]ToolExecutionResult, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/tools/run", n.collectionID),
		Body:        body,
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: execute tools: %w", err)
	}

	var response struct {
		Results []struct {
			FunctionResult     *rawFunctionCall `json:"functionResult"`
			FunctionParameters *rawFunctionCall `json:"functionParameters"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode tool results: %w", err)
	}

	results := make([]ToolExecutionResult, 0, len(response.Results))
	for _, r := range response.Results {
		var out ToolExecutionResult
		if r.FunctionResult != nil {
			call, err := r.FunctionResult.unwrap()
			if err != nil {
				return nil, fmt.Errorf("quill: decode function result: %w", err)
			}
			out.FunctionResult = call
		}
		if r.FunctionParameters != nil {
			call, err := r.FunctionParameters.unwrap()
			if err != nil {
				return nil, fmt.Errorf("quill: decode function parameters: %w", err)
			}
			out.FunctionParameters = call
		}
		results = append(results, out)
	}
	return results, nil
}

type rawFunctionCall struct {
	ToolID string `json:"tool_id"`
	Result string `json:"result"` // JSON encoded as a string
}

func (r *rawFunctionCall) unwrap() (*FunctionCall, error) {
	if !json.Valid([]byte(r.Result)) {
		return nil, fmt.Errorf("tool %s returned invalid JSON", r.ToolID)
	}
	return &FunctionCall{ToolID: r.ToolID, Result: json.RawMessage(r.Result)}, nil
}
