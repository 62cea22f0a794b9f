package semantic

import "fmt"

// ComputationError reports that the similarity technique itself failed
// (model unavailable, malformed vectors). Callers degrade to a sentinel score.
type ComputationError struct {
	Method  string
	Message string
	Cause   error
}

func (e *ComputationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s similarity failed: %s: %v", e.Method, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s similarity failed: %s", e.Method, e.Message)
}

func (e *ComputationError) Unwrap() error {
	return e.Cause
}
