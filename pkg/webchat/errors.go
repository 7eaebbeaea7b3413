package webchat

import (
	"fmt"
	"time"
)

// SetupError reports that the browser automation substrate itself is
// unavailable: the driver failed to start or the remote debugging endpoint
// could not be reached. Setup errors are fatal and carry a remediation hint
// for the caller; they are never retried here.
type SetupError struct {
	Hint string
	Err  error
}

func (e *SetupError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%v. %s", e.Err, e.Hint)
	}
	return e.Err.Error()
}

func (e *SetupError) Unwrap() error { return e.Err }

// ReadinessError reports that the target page failed to load or expose its
// input within the allowed time. Fatal for the turn; the next turn triggers
// a session rebuild.
type ReadinessError struct {
	Site string
	Err  error
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("%s page not ready: %v", e.Site, e.Err)
}

func (e *ReadinessError) Unwrap() error { return e.Err }

// InteractionError reports that an input or submit control could not be
// located. This means the site's UI structure changed; it is not
// auto-recoverable.
type InteractionError struct {
	Op string
}

func (e *InteractionError) Error() string { return e.Op }

// TimeoutError reports that no qualifying response unit ever appeared before
// the deadline. When partial content was observed the turn returns it
// instead of raising this error.
type TimeoutError struct {
	Index   int
	Elapsed time.Duration
	Units   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("response #%d did not complete within %gs (observed %d response units)",
		e.Index, e.Elapsed.Seconds(), e.Units)
}
