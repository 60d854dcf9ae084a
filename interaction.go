package quill

import "encoding/json"

// Interaction is one question/answer exchange and its lifecycle state.
// An interaction starts loading, accumulates response text while the
// stream is in flight, and becomes immutable once it reaches a terminal
// state: succeeded (Loading=false), failed (Error=true) or aborted
// (Aborted=true). The terminal flags are mutually exclusive.
type Interaction struct {
	ID                 string          `json:"id"`
	Query              string          `json:"query"`
	Response           string          `json:"response"`
	Sources            json.RawMessage `json:"sources,omitempty"`
	Loading            bool            `json:"loading"`
	Error              bool            `json:"error"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	Aborted            bool            `json:"aborted"`
	Related            *string         `json:"related,omitempty"`
	CurrentStep        string          `json:"current_step,omitempty"`
	CurrentStepVerbose string          `json:"current_step_verbose,omitempty"`
	SelectedLLM        *LLMConfig      `json:"selected_llm,omitempty"`
	OptimizedQuery     json.RawMessage `json:"optimized_query,omitempty"`
	AdvancedAutoquery  json.RawMessage `json:"advanced_autoquery,omitempty"`
}

// Terminal reports whether the interaction has reached an absorbing
// state. Events applied to a terminal interaction are dropped.
func (i Interaction) Terminal() bool {
	return !i.Loading
}
