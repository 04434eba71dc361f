package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDiverged indicates a trajectory left the numerically usable range.
	ErrDiverged = errors.New("dynamo: trajectory diverged")
)

// ValidationError reports a malformed model parameter or sampling input.
// It is surfaced to the caller immediately and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dynamo: invalid %s: %s", e.Field, e.Message)
}
