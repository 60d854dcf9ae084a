package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CollectionManager is the entry point for working with one collection:
// search, AI sessions, and the management namespaces.
type CollectionManager struct {
	collectionID string
	transport    Transport
	profile      *Profile

	AI            *AINamespace
	Collections   *CollectionsNamespace
	Index         *IndexNamespace
	Hooks         *HooksNamespace
	Logs          *LogsNamespace
	SystemPrompts *SystemPromptsNamespace
	Tools         *ToolsNamespace
	Identity      *IdentityNamespace
}

// ManagerOption configures a CollectionManager.
type ManagerOption func(*CollectionManager)

// WithProfile attaches a visitor profile. Searches and AI sessions tag
// requests with the profile's user id, and the Identity namespace
// becomes operational.
func WithProfile(p *Profile) ManagerOption {
	return func(m *CollectionManager) { m.profile = p }
}

// NewCollectionManager creates a manager for the given collection over
// the given transport.
func NewCollectionManager(transport Transport, collectionID string, opts ...ManagerOption) (*CollectionManager, error) {
	if transport == nil {
		return nil, fmt.Errorf("quill: transport is required: %w", ErrValidation)
	}
	if collectionID == "" {
		return nil, fmt.Errorf("quill: collection id is required: %w", ErrValidation)
	}
	m := &CollectionManager{
		collectionID: collectionID,
		transport:    transport,
	}
	for _, o := range opts {
		o(m)
	}
	m.AI = &AINamespace{transport: transport, collectionID: collectionID, profile: m.profile}
	m.Collections = &CollectionsNamespace{transport: transport}
	m.Index = &IndexNamespace{transport: transport, collectionID: collectionID}
	m.Hooks = &HooksNamespace{transport: transport, collectionID: collectionID}
	m.Logs = &LogsNamespace{transport: transport, collectionID: collectionID}
	m.SystemPrompts = &SystemPromptsNamespace{transport: transport, collectionID: collectionID}
	m.Tools = &ToolsNamespace{transport: transport, collectionID: collectionID}
	m.Identity = &IdentityNamespace{profile: m.profile}
	return m, nil
}

// CollectionID returns the collection this manager operates on.
func (m *CollectionManager) CollectionID() string { return m.collectionID }

// Search runs a search against the collection and reports client-side
// latency alongside the hits.
func (m *CollectionManager) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	start := time.Now()

	body := searchBody{SearchParams: params}
	if m.profile != nil {
		body.UserID = m.profile.GetUserID()
	}
	switch {
	case len(params.DatasourceIDs) > 0:
		body.Indexes = params.DatasourceIDs
	case len(params.Indexes) > 0:
		body.Indexes = params.Indexes
	}

	raw, err := m.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/search", m.collectionID),
		Body:        body,
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: search: %w", err)
	}

	var result SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("quill: decode search result: %w", err)
	}

	ms := time.Since(start).Milliseconds()
	result.Elapsed = Elapsed{Raw: ms, Formatted: formatDuration(ms)}
	return &result, nil
}

type searchBody struct {
	SearchParams
	UserID  string   `json:"user_id,omitempty"`
	Indexes []string `json:"indexes,omitempty"`
}

// CollectionsNamespace covers collection-level management calls.
type CollectionsNamespace struct {
	transport Transport
}

// GetStats returns collection statistics.
func (n *CollectionsNamespace) GetStats(ctx context.Context, collectionID string) (json.RawMessage, error) {
	return n.transport.Request(ctx, ClientRequest{
		Method:      "GET",
		Path:        fmt.Sprintf("/v1/collections/%s/stats", collectionID),
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
}

// GetAllDocs lists every document in the collection.
func (n *CollectionsNamespace) GetAllDocs(ctx context.Context, collectionID string) ([]json.RawMessage, error) {
	raw, err := n.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        "/v1/collections/list",
		Body:        map[string]string{"id": collectionID},
		KeyPosition: APIKeyInHeader,
		Target:      TargetWriter,
	})
	if err != nil {
		return nil, err
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("quill: decode documents: %w", err)
	}
	return docs, nil
}
