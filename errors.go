package quill

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrNoActiveRequest indicates Abort() was called with no answer in flight.
	ErrNoActiveRequest = errors.New("no active request to abort")

	// ErrAnswerInFlight indicates a second answer was started while one
	// was still streaming on the same session.
	ErrAnswerInFlight = errors.New("an answer is already in flight")

	// ErrEmptySession indicates an operation that requires history was
	// called on an empty session.
	ErrEmptySession = errors.New("no messages to regenerate")

	// ErrLastNotAssistant indicates the trailing message is not an
	// assistant message, so there is no response to regenerate.
	ErrLastNotAssistant = errors.New("last message is not an assistant message")

	// ErrNoLastRequest indicates no prior request parameters were
	// recorded for regeneration.
	ErrNoLastRequest = errors.New("no previous request parameters recorded")

	// ErrNoProfile indicates an identity operation was invoked on a
	// manager configured without a profile.
	ErrNoProfile = errors.New("profile is not configured")
)
