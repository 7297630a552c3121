package submit

import (
	"errors"
	"fmt"
)

// ErrSubmitInFlight is returned while a previous submission is outstanding
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// ValidationError rejects a form locally; no request is sent
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SubmissionError wraps a failed creation request (network or non-success response)
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to create job: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// AlertText maps a submission error to the blocking alert shown to the user
func AlertText(err error) string {
	var verr *ValidationError
	var serr *SubmissionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		if verr.Field == "prompt" {
			return "Please enter a prompt"
		}
		return "Please enter a valid " + verr.Field
	case errors.Is(err, ErrSubmitInFlight):
		return "A job is already being created"
	case errors.As(err, &serr):
		return "Failed to create job"
	default:
		return "Failed to create job"
	}
}
