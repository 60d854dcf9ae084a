package quill

import "encoding/json"

// Event is a sealed interface representing a decoded answer-stream event.
// Events are purely semantic. Transport/protocol errors come from the
// decoder's error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventStep updates the coarse progress label for the interaction.
type EventStep struct {
	Step string
}

func (EventStep) event() {}

// EventStepVerbose updates the human-readable progress description.
type EventStepVerbose struct {
	Step string
}

func (EventStepVerbose) event() {}

// EventResult carries a response text fragment. Fragments accumulate:
// later fragments extend, never overwrite, the existing response.
// Sources is set when the backend attaches citations to the fragment.
type EventResult struct {
	Text    string
	Sources json.RawMessage
}

func (EventResult) event() {}

// EventRelated carries suggested follow-up questions as opaque text.
type EventRelated struct {
	Text string
}

func (EventRelated) event() {}

// EventSelectedLLM reports which model the backend chose for generation.
type EventSelectedLLM struct {
	Config LLMConfig
}

func (EventSelectedLLM) event() {}

// EventOptimizedQuery carries the backend's rewritten search parameters.
type EventOptimizedQuery struct {
	Params json.RawMessage
}

func (EventOptimizedQuery) event() {}

// EventAdvancedAutoquery carries diagnostic output from the backend's
// query-planning stage.
type EventAdvancedAutoquery struct {
	Data json.RawMessage
}

func (EventAdvancedAutoquery) event() {}

// EventError is a backend-reported failure inside an otherwise healthy
// stream. It is terminal for the interaction but is not a decode failure.
type EventError struct {
	Message string
}

func (EventError) event() {}

// EventDone signals successful completion of the answer.
type EventDone struct{}

func (EventDone) event() {}

// EventUnknown is a passthrough for event kinds the decoder does not
// recognize, so callers can log without the decoder silently losing data.
type EventUnknown struct {
	Name string
	Data json.RawMessage
}

func (EventUnknown) event() {}

// Interface compliance checks.
var (
	_ Event = EventStep{}
	_ Event = EventStepVerbose{}
	_ Event = EventResult{}
	_ Event = EventRelated{}
	_ Event = EventSelectedLLM{}
	_ Event = EventOptimizedQuery{}
	_ Event = EventAdvancedAutoquery{}
	_ Event = EventError{}
	_ Event = EventDone{}
	_ Event = EventUnknown{}
)
