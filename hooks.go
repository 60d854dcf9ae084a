package quill

import (
	"context"
	"encoding/json"
	"fmt"
)

// Hook names a server-side extension point.
type Hook string

const (
	HookBeforeRetrieval Hook = "BeforeRetrieval"
	HookBeforeAnswer    Hook = "BeforeAnswer"
)

// HooksNamespace manages the JavaScript hooks attached to a collection.
type HooksNamespace struct {
	transport    Transport
	collectionID string
}

// AddHookConfig is the code to install at a hook point.
type AddHookConfig struct {
	Name Hook   `json:"name"`
	Code string `json:"code"`
}

// NewHookResponse confirms an installed hook.
type NewHookResponse struct {
	HookID string `json:"hook_id"`
	Code   string `json:"code"`
}

// Insert installs a hook.
func (n *HooksNamespace) Insert(ctx context.Context, cfg AddHookConfig) (*NewHookResponse, error) {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/hooks/set", n.collectionID),
		Body:        cfg,
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	if err != nil {
		return nil, err
	}
	return &NewHookResponse{HookID: string(cfg.Name), Code: cfg.Code}, nil
}

// List returns the installed hooks keyed by name; a nil value means the
// hook point is empty.
func (n *HooksNamespace) List(ctx context.Context) (map[string]*string, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/hooks/list", n.collectionID),
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	if err != nil {
		return nil, err
	}
	var response struct {
		Hooks map[string]*string `json:"hooks"`
	}
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("quill: decode hooks: %w", err)
	}
	return response.Hooks, nil
}

// Delete removes a hook.
func (n *HooksNamespace) Delete(ctx context.Context, hook Hook) error {
	_, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/hooks/delete", n.collectionID),
		Body:        map[string]string{"name_to_delete": string(hook)},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	return err
}
