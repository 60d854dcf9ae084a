package quill

import (
	"context"
	"fmt"
	"io"
)

// ResponseStream is a pull-based iterator over one answer's incremental
// response snapshots. Each Next call drives the decoder until the
// response text grows, applying every decoded event to the session
// state along the way. The stream is forward-only and non-restartable.
type ResponseStream struct {
	session *AnswerSession
	decoder *StreamDecoder
	ctl     *abortController
	ctx     context.Context
	idx     int

	finished bool
	err      error
}

// Next returns the accumulated response text after the next fragment
// arrives. It returns io.EOF when the interaction reaches a terminal
// state: success, backend-reported error, or cancellation. Only fatal
// transport/decode failures surface as errors.
func (r *ResponseStream) Next() (string, error) {
	if r.finished {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}

	for {
		evt, err := r.decoder.Next()
		if err == io.EOF {
			// Connection close with no further frames is normal
			// termination, same as an explicit done frame.
			r.applyAndNotify(EventDone{})
			r.finish(nil)
			return "", io.EOF
		}
		if err != nil {
			if r.ctx.Err() != nil {
				// Cancellation is not an error. Abort() already marked
				// the interaction; this covers parent-context
				// cancellation as well.
				r.markAborted()
				r.finish(nil)
				return "", io.EOF
			}
			ferr := fmt.Errorf("quill: decode: %w", err)
			r.markFailed(ferr)
			r.finish(ferr)
			return "", ferr
		}

		snapshot, stale := r.applyAndNotify(evt)
		if stale {
			// The session was cleared under us; stop without mutating.
			r.finish(nil)
			return "", io.EOF
		}

		switch evt.(type) {
		case EventDone, EventError:
			// Terminal for the interaction; remaining frames, if any,
			// are skipped.
			r.finish(nil)
			return "", io.EOF
		case EventResult:
			return snapshot, nil
		}
		// Non-text event, keep reading.
	}
}

// Drain consumes the stream to completion and returns the final
// response snapshot.
func (r *ResponseStream) Drain() (string, error) {
	var last string
	for {
		snapshot, err := r.Next()
		if err == io.EOF {
			return last, nil
		}
		if err != nil {
			return "", err
		}
		last = snapshot
	}
}

// Close releases the stream. Closing before a terminal state cancels
// the in-flight answer and marks the interaction aborted.
func (r *ResponseStream) Close() error {
	if r.finished {
		return r.decoder.Close()
	}
	if r.ctl.fire() {
		r.markAborted()
	}
	r.finish(nil)
	return nil
}

// applyAndNotify applies evt to the target interaction and pushes a
// state snapshot to the observer when something changed. It reports the
// accumulated response text and whether the interaction is gone.
func (r *ResponseStream) applyAndNotify(evt Event) (snapshot string, stale bool) {
	s := r.session
	s.mu.Lock()
	if r.idx >= len(s.store.interactions) {
		s.mu.Unlock()
		return "", true
	}
	mutated := s.store.apply(r.idx, evt)
	snapshot = s.store.interactions[r.idx].Response
	s.mu.Unlock()
	if mutated {
		s.notify()
	}
	return snapshot, false
}

func (r *ResponseStream) markAborted() {
	s := r.session
	s.mu.Lock()
	changed := s.store.markAborted()
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (r *ResponseStream) markFailed(err error) {
	s := r.session
	s.mu.Lock()
	s.store.markFailed(r.idx, err.Error())
	s.mu.Unlock()
	s.notify()
}

func (r *ResponseStream) finish(err error) {
	s := r.session
	s.mu.Lock()
	s.finishLocked(r.ctl)
	s.mu.Unlock()
	r.ctl.release()
	_ = r.decoder.Close()
	r.finished = true
	r.err = err
}
