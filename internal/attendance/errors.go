package attendance

import "github.com/juju/errors"

const (
	// ErrInvalidTransition is matched by every *TransitionError.
	ErrInvalidTransition = errors.ConstError("invalid attendance transition")

	// ErrStudentNotFound is returned when a mark names a NIC missing from
	// the student directory.
	ErrStudentNotFound = errors.ConstError("student not found")

	// ErrInvalidDirection is returned for directions other than in/out.
	ErrInvalidDirection = errors.ConstError("invalid mark direction")

	// ErrWriteFailed means the store rejected a write. The prior
	// collection is retained.
	ErrWriteFailed = errors.ConstError("attendance store write failed")

	// ErrCorrupt means the persisted collection could not be parsed.
	ErrCorrupt = errors.ConstError("attendance data corrupt")

	// ErrMalformedInput is returned by imports that do not parse to a
	// valid record collection.
	ErrMalformedInput = errors.ConstError("malformed attendance data")
)

// Reasons carried by a TransitionError.
const (
	ReasonAlreadyIn        = "already marked in today"
	ReasonNotMarkedIn      = "must mark in before marking out"
	ReasonAlreadyCompleted = "already completed today"
)

// TransitionError reports a mark that the current state does not permit.
type TransitionError struct {
	State     State
	Direction Direction
	Reason    string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrInvalidTransition) hold.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// checkTransition returns nil when direction is allowed from state.
func checkTransition(state State, direction Direction) error {
	var reason string
	switch {
	case direction == DirectionIn && state == NotMarked,
		direction == DirectionOut && state == In:
		return nil
	case state == Completed:
		reason = ReasonAlreadyCompleted
	case direction == DirectionIn:
		reason = ReasonAlreadyIn
	default:
		reason = ReasonNotMarkedIn
	}
	return &TransitionError{State: state, Direction: direction, Reason: reason}
}
