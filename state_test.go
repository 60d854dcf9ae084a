package quill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadingInteraction(id string) Interaction {
	return Interaction{ID: id, Query: "q", Loading: true}
}

func TestStoreApply_ResultAccumulates(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))

	assert.True(t, s.apply(idx, EventResult{Text: "Hello"}))
	assert.True(t, s.apply(idx, EventResult{Text: " world"}))
	assert.True(t, s.apply(idx, EventResult{Text: "!"}))

	assert.Equal(t, "Hello world!", s.interactions[idx].Response)
	// The paired assistant message mirrors the accumulated response.
	assert.Equal(t, "Hello world!", s.messages[1].Content)
}

func TestStoreApply_SourcesSetFromResult(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))

	s.apply(idx, EventResult{Text: "a", Sources: json.RawMessage(`[{"id":"d1"}]`)})
	assert.Equal(t, json.RawMessage(`[{"id":"d1"}]`), s.interactions[idx].Sources)
}

func TestStoreApply_TerminalIsAbsorbing(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))

	s.apply(idx, EventResult{Text: "before"})
	require.True(t, s.apply(idx, EventDone{}))

	// No event may mutate a terminal interaction.
	assert.False(t, s.apply(idx, EventResult{Text: " after"}))
	assert.False(t, s.apply(idx, EventError{Message: "late"}))
	assert.False(t, s.apply(idx, EventStep{Step: "late"}))

	in := s.interactions[idx]
	assert.Equal(t, "before", in.Response)
	assert.False(t, in.Loading)
	assert.False(t, in.Error)
	assert.False(t, in.Aborted)
}

func TestStoreApply_ErrorEventIsTerminal(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))

	require.True(t, s.apply(idx, EventError{Message: "boom"}))

	in := s.interactions[idx]
	assert.False(t, in.Loading)
	assert.True(t, in.Error)
	assert.Equal(t, "boom", in.ErrorMessage)
	assert.False(t, in.Aborted)
}

func TestStoreApply_RelatedOnlyWhenTracked(t *testing.T) {
	t.Parallel()
	var s interactionStore

	// Tracking disabled: Related stays nil.
	idx := s.push(loadingInteraction("i1"))
	assert.False(t, s.apply(idx, EventRelated{Text: "follow-up?"}))
	assert.Nil(t, s.interactions[idx].Related)

	// Tracking enabled: set once, later values dropped.
	tracked := loadingInteraction("i2")
	empty := ""
	tracked.Related = &empty
	idx = s.push(tracked)
	assert.True(t, s.apply(idx, EventRelated{Text: "first"}))
	assert.False(t, s.apply(idx, EventRelated{Text: "second"}))
	assert.Equal(t, "first", *s.interactions[idx].Related)
}

func TestStoreApply_DiagnosticsSetOnce(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))

	require.True(t, s.apply(idx, EventSelectedLLM{Config: LLMConfig{Provider: LLMOpenAI, Model: "gpt-4o"}}))
	assert.False(t, s.apply(idx, EventSelectedLLM{Config: LLMConfig{Provider: LLMGoogle, Model: "gemini"}}))
	assert.Equal(t, "gpt-4o", s.interactions[idx].SelectedLLM.Model)

	require.True(t, s.apply(idx, EventOptimizedQuery{Params: json.RawMessage(`{"term":"a"}`)}))
	assert.False(t, s.apply(idx, EventOptimizedQuery{Params: json.RawMessage(`{"term":"b"}`)}))
}

func TestStoreApply_OutOfRangeIsNoOp(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))
	s.clear()

	// An in-flight stream targeting a cleared store must not mutate it.
	assert.False(t, s.apply(idx, EventResult{Text: "stale"}))
	assert.Empty(t, s.interactions)
	assert.Empty(t, s.messages)
}

func TestStorePush_PairingInvariant(t *testing.T) {
	t.Parallel()
	var s interactionStore
	for i := 0; i < 3; i++ {
		s.push(loadingInteraction("i"))
		assert.Equal(t, 2*len(s.interactions), len(s.messages))
	}
}

func TestStorePopLast(t *testing.T) {
	t.Parallel()
	var s interactionStore

	require.ErrorIs(t, s.popLast(), ErrEmptySession)

	s.push(loadingInteraction("i1"))
	s.push(loadingInteraction("i2"))
	require.NoError(t, s.popLast())
	assert.Len(t, s.interactions, 1)
	assert.Len(t, s.messages, 2)

	// Pair removal is atomic: a mangled tail refuses to pop.
	s.messages = append(s.messages, Message{Role: RoleUser, Content: "odd"})
	assert.ErrorIs(t, s.popLast(), ErrLastNotAssistant)
}

func TestStoreBaseOffset_SeedMessages(t *testing.T) {
	t.Parallel()
	s := interactionStore{
		base:     1,
		messages: []Message{{Role: RoleSystem, Content: "be terse"}},
	}
	idx := s.push(loadingInteraction("i1"))

	s.apply(idx, EventResult{Text: "answer"})
	// Pair 0 sits after the seed message.
	assert.Equal(t, "answer", s.messages[2].Content)

	require.NoError(t, s.popLast())
	assert.Len(t, s.messages, 1)

	// Popping past the seed boundary fails.
	assert.ErrorIs(t, s.popLast(), ErrEmptySession)
}

func TestStoreMarkAborted(t *testing.T) {
	t.Parallel()
	var s interactionStore
	assert.False(t, s.markAborted())

	idx := s.push(loadingInteraction("i1"))
	assert.True(t, s.markAborted())
	in := s.interactions[idx]
	assert.True(t, in.Aborted)
	assert.False(t, in.Loading)
	assert.False(t, in.Error)

	// Idempotent on a terminal interaction.
	assert.False(t, s.markAborted())
}

func TestStoreSnapshot_IsDefensiveCopy(t *testing.T) {
	t.Parallel()
	var s interactionStore
	idx := s.push(loadingInteraction("i1"))

	snap := s.snapshot()
	snap[0].Response = "mutated"
	assert.Empty(t, s.interactions[idx].Response)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "250ms", formatDuration(250))
	assert.Equal(t, "2s", formatDuration(2000))
	assert.Equal(t, "1.5s", formatDuration(1500))
	assert.Equal(t, "0ms", formatDuration(0))
}
