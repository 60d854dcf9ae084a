package quill

import (
	"context"
	"encoding/json"
	"fmt"
)

// SystemPromptUsageMode controls when the backend applies a system
// prompt.
type SystemPromptUsageMode string

const (
	SystemPromptAutomatic SystemPromptUsageMode = "automatic"
	SystemPromptManual    SystemPromptUsageMode = "manual"
)

// SystemPrompt is a stored system prompt.
type SystemPrompt struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Prompt    string                `json:"prompt"`
	UsageMode SystemPromptUsageMode `json:"usage_mode"`
}

// SystemPromptValidationResponse reports the backend's safety and
// quality checks for a prompt. Check shapes vary by backend version, so
// they are surfaced unparsed.
type SystemPromptValidationResponse struct {
	Security          json.RawMessage `json:"security"`
	Technical         json.RawMessage `json:"technical"`
	OverallAssessment json.RawMessage `json:"overall_assessment"`
}

// SystemPromptsNamespace manages a collection's system prompts.
type SystemPromptsNamespace struct {
	transport    Transport
	collectionID string
}

// Insert stores a new system prompt.
func (n *SystemPromptsNamespace) Insert(ctx context.Context, prompt SystemPrompt) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/system_prompts/insert", n.collectionID),
		Body:        prompt,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Get returns one system prompt by id.
func (n *SystemPromptsNamespace) Get(ctx context.Context, id string) (*SystemPrompt, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/system_prompts/get", n.collectionID),
		Params:      queryParams("system_prompt_id", id),
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, err
	}
	var response struct {
		SystemPrompt SystemPrompt `json:"system_prompt"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode system prompt: %w", err)
	}
	return &response.SystemPrompt, nil
}

// GetAll returns every system prompt in the collection.
func (n *SystemPromptsNamespace) GetAll(ctx context.Context) ([]SystemPrompt, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/system_prompts/all", n.collectionID),
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, err
	}
	var response struct {
		SystemPrompts []SystemPrompt `json:"system_prompts"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode system prompts: %w", err)
	}
	return response.SystemPrompts, nil
}

// Update replaces a stored system prompt.
func (n *SystemPromptsNamespace) Update(ctx context.Context, prompt SystemPrompt) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/system_prompts/update", n.collectionID),
		Body:        prompt,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Delete removes a system prompt.
func (n *SystemPromptsNamespace) Delete(ctx context.Context, id string) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/system_prompts/delete", n.collectionID),
		Body:        map[string]string{"id": id},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}

// Validate asks the backend to vet a prompt without storing it.
func (n *SystemPromptsNamespace) Validate(ctx context.Context, prompt SystemPrompt) (*SystemPromptValidationResponse, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/system_prompts/validate", n.collectionID),
		Body:        prompt,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	if err != nil {
		return nil, err
	}
	var response SystemPromptValidationResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode validation response: %w", err)
	}
	return &response, nil
}
