package db

import "fmt"

// ValidationError is returned for history entries that cannot be stored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid history entry %s: %s", e.Field, e.Message)
}
