package pipeline

import "fmt"

// MalformedOutputError indicates the sanitizer could not recover a parsable
// record array from the model's response, or the recovered value does not
// resemble a record list.
type MalformedOutputError struct {
	Reason string
	Err    error
}

func (e *MalformedOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }
