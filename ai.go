package quill

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/quillhq/quill/sse"
)

// AINamespace groups the generation endpoints: NLP search and answer
// sessions.
type AINamespace struct {
	transport    Transport
	collectionID string
	profile      *Profile
}

// NLPSearchParams describes a natural-language search.
type NLPSearchParams struct {
	Query     string     `json:"query"`
	LLMConfig *LLMConfig `json:"llm_config,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
}

// NLPSearch runs a one-shot natural-language search.
func (a *AINamespace) NLPSearch(ctx context.Context, params NLPSearchParams) ([]json.RawMessage, error) {
	if params.UserID == "" && a.profile != nil {
		params.UserID = a.profile.GetUserID()
	}
	raw, err := a.transport.Request(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/nlp_search", a.collectionID),
		Body:        params,
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: nlp search: %w", err)
	}
	var results []json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("quill: decode nlp search results: %w", err)
	}
	return results, nil
}

// NLPStreamResult is one update from a streaming NLP search. Status
// mirrors the wire event name; Data carries the payload unparsed since
// each status has its own shape.
type NLPStreamResult struct {
	Status string
	Data   json.RawMessage
}

// NLPStream iterates streaming NLP search updates.
type NLPStream struct {
	body   io.ReadCloser
	frames *sse.FrameReader
}

// Next returns the next update, or io.EOF when the backend closes the
// stream.
func (s *NLPStream) Next() (NLPStreamResult, error) {
	frame, err := s.frames.ReadFrame()
	if err != nil {
		return NLPStreamResult{}, err
	}
	return NLPStreamResult{Status: frame.Event, Data: json.RawMessage(frame.Data)}, nil
}

// Close closes the underlying stream.
func (s *NLPStream) Close() error {
	return s.body.Close()
}

// NLPSearchStream runs a natural-language search and streams planning
// and retrieval updates as they happen.
func (a *AINamespace) NLPSearchStream(ctx context.Context, params NLPSearchParams) (*NLPStream, error) {
	if params.UserID == "" && a.profile != nil {
		params.UserID = a.profile.GetUserID()
	}
	body := map[string]any{
		"llm_config": params.LLMConfig,
		"user_id":    params.UserID,
		"messages": []Message{
			{Role: RoleUser, Content: params.Query},
		},
	}
	rc, err := a.transport.OpenStream(ctx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/generate/nlp_query", a.collectionID),
		Body:        body,
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: nlp search stream: %w", err)
	}
	return &NLPStream{body: rc, frames: sse.NewFrameReader(rc)}, nil
}

// CreateAISessionConfig configures a new answer session.
type CreateAISessionConfig struct {
	LLMConfig       *LLMConfig
	InitialMessages []Message
	SessionID       string
	OnStateChange   func([]Interaction)
}

// CreateAISession creates an answer session bound to this collection.
// When a profile is attached to the manager it doubles as the session's
// identity resolver.
func (a *AINamespace) CreateAISession(cfg CreateAISessionConfig) (*AnswerSession, error) {
	sessionCfg := AnswerSessionConfig{
		CollectionID:    a.collectionID,
		Transport:       a.transport,
		SessionID:       cfg.SessionID,
		InitialMessages: cfg.InitialMessages,
		LLMConfig:       cfg.LLMConfig,
		OnStateChange:   cfg.OnStateChange,
	}
	if a.profile != nil {
		sessionCfg.Identity = a.profile
	}
	return NewAnswerSession(sessionCfg)
}
