package workshop

import "errors"

var (
	// ErrNotFound indicates the workshop job does not exist.
	ErrNotFound = errors.New("workshop job not found")
	// ErrLocked is returned when a form section is not editable in the job's status.
	ErrLocked = errors.New("workshop job section locked in current status")
	// ErrOrderNotAllowed is returned when a sales order cannot be attached.
	ErrOrderNotAllowed = errors.New("order creation not allowed in current status")
	// ErrTerminalStatus is returned when advancing a completed job.
	ErrTerminalStatus = errors.New("workshop job already completed")
	// ErrUnknownStatus is returned when a job carries a status outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown workshop status")
	// ErrValidation wraps request validation failures.
	ErrValidation = errors.New("invalid workshop request")
	// ErrConflict indicates the job changed status concurrently.
	ErrConflict = errors.New("workshop job status changed concurrently")
)
