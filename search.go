package quill

import (
	"encoding/json"
	"fmt"
)

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	SearchModeFulltext SearchMode = "fulltext"
	SearchModeVector   SearchMode = "vector"
	SearchModeHybrid   SearchMode = "hybrid"
)

// SearchParams describes a search query. DatasourceIDs and Indexes are
// aliases for the same backend field; DatasourceIDs wins when both are
// set.
type SearchParams struct {
	Term          string          `json:"term"`
	Mode          SearchMode      `json:"mode,omitempty"`
	Limit         int             `json:"limit,omitempty"`
	Offset        int             `json:"offset,omitempty"`
	Properties    []string        `json:"properties,omitempty"`
	Where         json.RawMessage `json:"where,omitempty"`
	Facets        json.RawMessage `json:"facets,omitempty"`
	Similarity    *float64        `json:"similarity,omitempty"`
	DatasourceIDs []string        `json:"-"`
	Indexes       []string        `json:"-"`
}

// Hit is one search result.
type Hit struct {
	ID       string          `json:"id"`
	Score    float64         `json:"score"`
	Document json.RawMessage `json:"document"`
}

// Elapsed reports request latency measured client-side.
type Elapsed struct {
	Raw       int64  `json:"raw"` // milliseconds
	Formatted string `json:"formatted"`
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	Count   int             `json:"count"`
	Hits    []Hit           `json:"hits"`
	Facets  json.RawMessage `json:"facets,omitempty"`
	Elapsed Elapsed         `json:"elapsed"`
}

// formatDuration renders a millisecond duration the way the dashboard
// displays it: "250ms", "2s", "1.5s".
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000
	if seconds == float64(int64(seconds)) {
		return fmt.Sprintf("%ds", int64(seconds))
	}
	return fmt.Sprintf("%.1fs", seconds)
}
