package pipeline

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-matcher/internal/semantic"
	"github.com/jonathan/resume-matcher/internal/types"
	"github.com/jonathan/resume-matcher/internal/vocabulary"
)

// InputError reports input the engine refuses to process. It is never retried.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// KindOf classifies err for callers that report errors by kind (HTTP, queue results).
func KindOf(err error) types.ErrorKind {
	var inputErr *InputError
	var configErr *vocabulary.ConfigurationError
	var compErr *semantic.ComputationError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &inputErr):
		return types.KindInput
	case errors.As(err, &configErr):
		return types.KindConfiguration
	case errors.As(err, &compErr):
		return types.KindComputation
	default:
		return types.KindInternal
	}
}
