package quill

// interactionStore holds the ordered conversation and the ordered
// interaction records. It is the single source of truth observed by the
// caller. Messages and interactions stay length-synchronized: messages
// 2k and 2k+1 are interaction k's query/response pair, added together
// and removed together.
//
// The store is not safe for concurrent use; AnswerSession serializes
// access to it.
//
// base counts seed messages (system prompts, imported history) that
// precede the first query/response pair; pair k lives at messages
// base+2k and base+2k+1.
type interactionStore struct {
	base         int
	messages     []Message
	interactions []Interaction
}

// apply is the single mutation entry point. It is total: no event kind
// is rejected, unknown kinds are no-ops. Events targeting an index out
// of range (the store was cleared under an in-flight stream) or a
// terminal interaction are dropped. It reports whether the interaction
// was mutated.
func (s *interactionStore) apply(idx int, evt Event) bool {
	if idx < 0 || idx >= len(s.interactions) {
		return false
	}
	in := &s.interactions[idx]
	if in.Terminal() {
		return false
	}

	switch e := evt.(type) {
	case EventStep:
		in.CurrentStep = e.Step
	case EventStepVerbose:
		in.CurrentStepVerbose = e.Step
	case EventResult:
		in.Response += e.Text
		if len(e.Sources) > 0 {
			in.Sources = e.Sources
		}
		s.syncAssistantMessage(idx)
	case EventRelated:
		// Only tracked when related suggestions were requested.
		if in.Related == nil || *in.Related != "" {
			return false
		}
		related := e.Text
		in.Related = &related
	case EventSelectedLLM:
		if in.SelectedLLM != nil {
			return false
		}
		cfg := e.Config
		in.SelectedLLM = &cfg
	case EventOptimizedQuery:
		if in.OptimizedQuery != nil {
			return false
		}
		in.OptimizedQuery = e.Params
	case EventAdvancedAutoquery:
		if in.AdvancedAutoquery != nil {
			return false
		}
		in.AdvancedAutoquery = e.Data
	case EventError:
		in.Error = true
		in.ErrorMessage = e.Message
		in.Loading = false
	case EventDone:
		in.Loading = false
	default:
		return false
	}
	return true
}

// syncAssistantMessage mirrors the interaction's accumulated response
// into its paired assistant message.
func (s *interactionStore) syncAssistantMessage(idx int) {
	mi := s.base + 2*idx + 1
	if mi < len(s.messages) && s.messages[mi].Role == RoleAssistant {
		s.messages[mi].Content = s.interactions[idx].Response
	}
}

// push appends a new loading interaction and its query/response message
// pair, returning the interaction's index.
func (s *interactionStore) push(in Interaction) int {
	s.messages = append(s.messages,
		Message{Role: RoleUser, Content: in.Query},
		Message{Role: RoleAssistant, Content: ""},
	)
	s.interactions = append(s.interactions, in)
	return len(s.interactions) - 1
}

// popLast removes the last message pair and the last interaction
// atomically. It fails if the store is empty or the trailing message is
// not the assistant member of a pair.
func (s *interactionStore) popLast() error {
	if len(s.interactions) == 0 || len(s.messages) < s.base+2 {
		return ErrEmptySession
	}
	if s.messages[len(s.messages)-1].Role != RoleAssistant {
		return ErrLastNotAssistant
	}
	s.messages = s.messages[:len(s.messages)-2]
	s.interactions = s.interactions[:len(s.interactions)-1]
	return nil
}

// clear discards all messages and interactions atomically, seed
// messages included.
func (s *interactionStore) clear() {
	s.base = 0
	s.messages = nil
	s.interactions = nil
}

// markAborted transitions the last interaction to the aborted terminal
// state. It reports whether anything changed; an empty store or an
// already-terminal interaction is left alone.
func (s *interactionStore) markAborted() bool {
	if len(s.interactions) == 0 {
		return false
	}
	in := &s.interactions[len(s.interactions)-1]
	if in.Terminal() {
		return false
	}
	in.Aborted = true
	in.Loading = false
	return true
}

// markFailed transitions the interaction at idx to the failed terminal
// state with the given message. Used for fatal transport/decode errors,
// which bypass the event path.
func (s *interactionStore) markFailed(idx int, msg string) {
	if idx < 0 || idx >= len(s.interactions) {
		return
	}
	in := &s.interactions[idx]
	if in.Terminal() {
		return
	}
	in.Error = true
	in.ErrorMessage = msg
	in.Loading = false
}

// snapshot returns a defensive copy of the interaction list for
// observers.
func (s *interactionStore) snapshot() []Interaction {
	out := make([]Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}
