package ideation

import "errors"

var (
	// ErrInvalidInput is returned when caller-supplied input fails a precondition.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProjectNotFound is returned when the project store has no such project.
	ErrProjectNotFound = errors.New("project not found")
)
