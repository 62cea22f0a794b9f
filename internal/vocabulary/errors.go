package vocabulary

import "fmt"

// ConfigurationError reports a missing, empty or inconsistent skill vocabulary.
// It is raised while the vocabulary is being built, before any request is served.
type ConfigurationError struct {
	Message string
	Field   string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("vocabulary configuration error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("vocabulary configuration error: %s", msg)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
