package quill

import "fmt"

// LLMProvider identifies a generation backend vendor.
type LLMProvider string

const (
	LLMOpenAI    LLMProvider = "openai"
	LLMFireworks LLMProvider = "fireworks"
	LLMTogether  LLMProvider = "together"
	LLMGoogle    LLMProvider = "google"
)

// LLMConfig selects the model used for answer generation.
type LLMConfig struct {
	Provider LLMProvider `json:"provider"`
	Model    string      `json:"model"`
}

// RelatedConfig asks the backend to suggest follow-up questions alongside
// the answer. Related text is only tracked on the interaction when
// Enabled is true.
type RelatedConfig struct {
	Enabled bool   `json:"enabled"`
	Size    int    `json:"size,omitempty"`
	Format  string `json:"format,omitempty"` // "question" or "query"
}

// AnswerRequest carries one question and its generation parameters.
// Identifier fields left empty are filled by the session: InteractionID
// and SessionID are generated, VisitorID comes from the identity
// resolver.
type AnswerRequest struct {
	Query         string         `json:"query"`
	InteractionID string         `json:"interaction_id,omitempty"`
	VisitorID     string         `json:"visitor_id,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	Related       *RelatedConfig `json:"related,omitempty"`
	DatasourceIDs []string       `json:"datasource_ids,omitempty"`
	MinSimilarity *float64       `json:"min_similarity,omitempty"`
	MaxDocuments  *int           `json:"max_documents,omitempty"`
	RagatNotation string         `json:"ragat_notation,omitempty"`
}

// Validate checks universal constraints on AnswerRequest.
func (r AnswerRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query must not be empty: %w", ErrValidation)
	}
	if r.MinSimilarity != nil {
		if *r.MinSimilarity < 0 || *r.MinSimilarity > 1 {
			return fmt.Errorf("min_similarity must be in [0, 1], got %g: %w", *r.MinSimilarity, ErrValidation)
		}
	}
	if r.MaxDocuments != nil && *r.MaxDocuments < 0 {
		return fmt.Errorf("max_documents must be non-negative, got %d: %w", *r.MaxDocuments, ErrValidation)
	}
	return nil
}
