package leads

import "errors"

var (
	// ErrMissingSender is returned when a lead carries no sender address
	ErrMissingSender = errors.New("sender address is required")

	// ErrIncomplete is returned when a partial record is offered for saving
	ErrIncomplete = errors.New("lead record is incomplete")
)
