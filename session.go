package quill

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// AnswerSessionConfig configures an AnswerSession.
type AnswerSessionConfig struct {
	CollectionID    string
	Transport       Transport
	SessionID       string     // generated when empty
	InitialMessages []Message  // seeds the conversation history
	LLMConfig       *LLMConfig // forwarded to the backend on every answer
	Identity        IdentityResolver
	OnStateChange   func([]Interaction) // invoked after every state mutation
}

// AnswerSession manages one conversation against the backend's answer
// endpoint: it keeps the message history and interaction records
// consistent while a response stream is in flight, and supports
// mid-stream cancellation and regeneration without corrupting history.
//
// Public operations are serialized against each other; only one answer
// may be in flight at a time.
type AnswerSession struct {
	collectionID string
	transport    Transport
	llmConfig    *LLMConfig
	identity     IdentityResolver
	onChange     func([]Interaction)
	sessionID    string

	mu          sync.Mutex
	store       interactionStore
	lastRequest *AnswerRequest
	abort       *abortController
	active      bool
}

// NewAnswerSession creates a session for the given collection.
func NewAnswerSession(cfg AnswerSessionConfig) (*AnswerSession, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("quill: transport is required: %w", ErrValidation)
	}
	if cfg.CollectionID == "" {
		return nil, fmt.Errorf("quill: collection id is required: %w", ErrValidation)
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s := &AnswerSession{
		collectionID: cfg.CollectionID,
		transport:    cfg.Transport,
		llmConfig:    cfg.LLMConfig,
		identity:     cfg.Identity,
		onChange:     cfg.OnStateChange,
		sessionID:    sessionID,
	}
	s.store.messages = append(s.store.messages, cfg.InitialMessages...)
	s.store.base = len(s.store.messages)
	return s, nil
}

// SessionID returns the stable identifier for this conversation.
func (s *AnswerSession) SessionID() string { return s.sessionID }

// Messages returns a copy of the conversation history.
func (s *AnswerSession) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.store.messages))
	copy(out, s.store.messages)
	return out
}

// Interactions returns a copy of the interaction records.
func (s *AnswerSession) Interactions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.snapshot()
}

// Answer asks a question and blocks until the full response has
// streamed in. It returns the final response text. Backend-reported
// errors are absorbed into the interaction state; only fatal
// transport/decode failures are returned.
func (s *AnswerSession) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	stream, err := s.AnswerStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()
	return stream.Drain()
}

// AnswerStream asks a question and returns a pull-based stream of
// incremental response snapshots. Each Next call drives the decoder by
// one frame batch and yields the accumulated response text. The stream
// is forward-only and not resumable; issue a fresh Answer or
// AnswerStream call to retry.
func (s *AnswerSession) AnswerStream(ctx context.Context, req AnswerRequest) (*ResponseStream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrAnswerInFlight
	}

	// Retain the caller's parameters verbatim so regeneration replays
	// the question with fresh identifiers.
	saved := req
	s.lastRequest = &saved

	s.enrich(&req)

	in := Interaction{
		ID:          req.InteractionID,
		Query:       req.Query,
		Loading:     true,
		CurrentStep: "starting",
	}
	if req.Related != nil && req.Related.Enabled {
		empty := ""
		in.Related = &empty
	}
	idx := s.store.push(in)

	body := s.answerBody(req)

	streamCtx, cancel := context.WithCancel(ctx)
	ctl := &abortController{cancel: cancel}
	s.abort = ctl
	s.active = true
	s.mu.Unlock()

	s.notify()

	rc, err := s.transport.OpenStream(streamCtx, ClientRequest{
		Method:      "POST",
		Path:        fmt.Sprintf("/v1/collections/%s/generate/answer", s.collectionID),
		Body:        body,
		KeyPosition: APIKeyInQueryParams,
		Target:      TargetReader,
	})
	if err != nil {
		cancel()
		s.mu.Lock()
		s.store.markFailed(idx, err.Error())
		s.finishLocked(ctl)
		s.mu.Unlock()
		s.notify()
		return nil, fmt.Errorf("quill: answer stream: %w", err)
	}

	return &ResponseStream{
		session: s,
		decoder: NewStreamDecoder(streamCtx, rc),
		ctl:     ctl,
		ctx:     streamCtx,
		idx:     idx,
	}, nil
}

// RegenerateLast replays the previous question verbatim and blocks for
// the full response. The last message pair and interaction are removed
// first, so history keeps the same shape as before the original answer.
func (s *AnswerSession) RegenerateLast(ctx context.Context) (string, error) {
	req, err := s.prepareRegenerate()
	if err != nil {
		return "", err
	}
	return s.Answer(ctx, req)
}

// RegenerateLastStream is the streaming variant of RegenerateLast.
func (s *AnswerSession) RegenerateLastStream(ctx context.Context) (*ResponseStream, error) {
	req, err := s.prepareRegenerate()
	if err != nil {
		return nil, err
	}
	return s.AnswerStream(ctx, req)
}

func (s *AnswerSession) prepareRegenerate() (AnswerRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return AnswerRequest{}, ErrAnswerInFlight
	}
	if len(s.store.interactions) == 0 || len(s.store.messages) == 0 {
		return AnswerRequest{}, ErrEmptySession
	}
	if s.store.messages[len(s.store.messages)-1].Role != RoleAssistant {
		return AnswerRequest{}, ErrLastNotAssistant
	}
	if s.lastRequest == nil {
		return AnswerRequest{}, ErrNoLastRequest
	}
	if err := s.store.popLast(); err != nil {
		return AnswerRequest{}, err
	}
	return *s.lastRequest, nil
}

// Abort cancels the in-flight answer. The last interaction is marked
// aborted and observers are notified immediately, without waiting for
// the decoder to unwind. Aborting twice is a no-op; aborting with no
// active request fails with ErrNoActiveRequest.
func (s *AnswerSession) Abort() error {
	s.mu.Lock()
	ctl := s.abort
	if ctl == nil || len(s.store.interactions) == 0 {
		s.mu.Unlock()
		return ErrNoActiveRequest
	}
	if !ctl.fire() {
		s.mu.Unlock()
		return nil
	}
	s.store.markAborted()
	s.mu.Unlock()
	s.notify()
	return nil
}

// ClearSession resets messages and interactions to empty. It does not
// cancel an in-flight stream; callers abort first if one is active. A
// stream left in flight finds its interaction gone and stops without
// mutating the cleared store.
func (s *AnswerSession) ClearSession() {
	s.mu.Lock()
	s.store.clear()
	s.mu.Unlock()
	s.notify()
}

// enrich fills identifiers left empty by the caller.
func (s *AnswerSession) enrich(req *AnswerRequest) {
	if req.VisitorID == "" {
		if s.identity != nil {
			req.VisitorID = s.identity.GetUserID()
		} else {
			req.VisitorID = DefaultServerUserID
		}
	}
	if req.InteractionID == "" {
		req.InteractionID = uuid.NewString()
	}
	if req.SessionID == "" {
		req.SessionID = s.sessionID
	}
}

// answerBody builds the request payload. The trailing empty assistant
// placeholder is excluded from the history sent to the backend.
// Called with s.mu held.
func (s *AnswerSession) answerBody(req AnswerRequest) answerBody {
	history := make([]Message, 0, len(s.store.messages)-1)
	history = append(history, s.store.messages[:len(s.store.messages)-1]...)
	return answerBody{
		InteractionID:  req.InteractionID,
		Query:          req.Query,
		VisitorID:      req.VisitorID,
		ConversationID: req.SessionID,
		Messages:       history,
		LLMConfig:      s.llmConfig,
		Related:        req.Related,
		MinSimilarity:  req.MinSimilarity,
		MaxDocuments:   req.MaxDocuments,
		RagatNotation:  req.RagatNotation,
	}
}

type answerBody struct {
	InteractionID  string         `json:"interaction_id"`
	Query          string         `json:"query"`
	VisitorID      string         `json:"visitor_id,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Messages       []Message      `json:"messages"`
	LLMConfig      *LLMConfig     `json:"llm_config,omitempty"`
	Related        *RelatedConfig `json:"related,omitempty"`
	MinSimilarity  *float64       `json:"min_similarity,omitempty"`
	MaxDocuments   *int           `json:"max_documents,omitempty"`
	RagatNotation  string         `json:"ragat_notation,omitempty"`
}

// finishLocked detaches the controller and clears the in-flight flag.
// Called with s.mu held. A newer controller is left untouched.
func (s *AnswerSession) finishLocked(ctl *abortController) {
	if s.abort == ctl {
		s.abort = nil
		s.active = false
	}
}

// notify pushes a read-only snapshot of the interaction list to the
// observer. Called without s.mu held so observers may call back into
// the session.
func (s *AnswerSession) notify() {
	if s.onChange == nil {
		return
	}
	s.mu.Lock()
	snap := s.store.snapshot()
	s.mu.Unlock()
	s.onChange(snap)
}

// abortController is the cancellation signal for one in-flight answer.
// It is created per AnswerStream call and discarded when that answer's
// stream terminates. Abort communicates intent only; the decoder
// performs the actual teardown at the next frame boundary.
type abortController struct {
	cancel context.CancelFunc

	mu    sync.Mutex
	fired bool
}

// fire sets the signal. It reports whether this call was the first.
func (c *abortController) fire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired {
		return false
	}
	c.fired = true
	c.cancel()
	return true
}

// release cancels the underlying context to free resources without
// marking the controller as aborted.
func (c *abortController) release() {
	c.cancel()
}
