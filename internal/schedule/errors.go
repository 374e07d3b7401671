package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the sentinel wrapped by every CycleError, so callers can
// match with errors.Is without caring which tasks were involved.
var ErrCycle = errors.New("cyclic dependency detected")

// ValidationError reports a malformed task list. The scheduler rejects
// bad input instead of tolerating it, since silent tolerance masks
// data-entry mistakes upstream.
type ValidationError struct {
	TaskID string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.TaskID == "" {
		return "invalid task list: " + e.Reason
	}
	return fmt.Sprintf("invalid task %q: %s", e.TaskID, e.Reason)
}

// CycleError carries the task ids that could not be topologically
// ordered. Those are the tasks on or downstream of the cycle.
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected among tasks: %s", strings.Join(e.Remaining, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
