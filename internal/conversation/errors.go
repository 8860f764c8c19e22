package conversation

import "fmt"

// ValidationError is returned for rejected user input. The state is left
// untouched whenever one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Fields)
}

// ServiceError wraps any failure of the completion service call. It never
// escapes SubmitTurn; it is recorded on the Exchange and in the assistant turn.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// Marker is the assistant turn content recorded for a failed request.
func (e *ServiceError) Marker() string {
	return fmt.Sprintf("[Error contacting OpenAI API: %v]", e.Err)
}
