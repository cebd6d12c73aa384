package llm

import "fmt"

// InvocationError is a per-call transport failure: non-success status,
// unusable response envelope, or an empty model reply.
type InvocationError struct {
	Provider   string
	StatusCode int // zero when the failure was not an HTTP status
	Body       string
	Err        error
}

func (e *InvocationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s invocation failed: %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
