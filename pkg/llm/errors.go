package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the provider answers with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// GenerationError wraps any failure of the completion call.
type GenerationError struct {
	Provider string
	Model    string
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("sql generation failed (%s/%s): %v", e.Provider, e.Model, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// IsGenerationError reports whether err came from the completion step.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
