package scheduler

import (
	"errors"
	"fmt"

	"evalgo.org/gridium/models"
)

var (
	// ErrSlotNotAvailable is returned when a reservation is attempted on a
	// slot that is not in the available state
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrSlotNotReserved is returned when a session start is attempted on a
	// slot that was never reserved
	ErrSlotNotReserved = errors.New("slot is not reserved")

	// ErrNoMatchingSlot is returned when no available slot on a host
	// supports the requested capabilities
	ErrNoMatchingSlot = errors.New("unable to reserve a slot")

	// ErrNoSession is returned when a worker reports success but hands back
	// no session
	ErrNoSession = errors.New("worker returned no session")
)

// SessionNotCreatedError reports that a session could not be created for a
// capability request, either because no slot matched at reservation time or
// because the worker failed after a slot had been reserved. Callers may
// retry on another host.
type SessionNotCreatedError struct {
	WorkerID     string
	Capabilities models.Capabilities
	Err          error
}

func (e *SessionNotCreatedError) Error() string {
	return fmt.Sprintf("session not created on worker %s for [%s]: %v", e.WorkerID, e.Capabilities, e.Err)
}

func (e *SessionNotCreatedError) Unwrap() error {
	return e.Err
}

// IsSessionNotCreated reports whether err is (or wraps) a
// SessionNotCreatedError.
func IsSessionNotCreated(err error) bool {
	var snc *SessionNotCreatedError
	return errors.As(err, &snc)
}
