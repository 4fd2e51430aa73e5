package optimizer

import "errors"

var (
	// ErrPrecondition is wrapped by every failure detected before the first generation.
	ErrPrecondition = errors.New("optimizer precondition failed")

	ErrNoSessions        = preconditionError("no sessions to schedule for the target semester")
	ErrNoEligibleFaculty = preconditionError("no faculty is eligible for any scheduled course")
	ErrNoRooms           = preconditionError("no rooms available")
	ErrNoSlots           = preconditionError("no schedulable periods after excluding lunch")

	// ErrStopped is returned when the caller declines to continue at a yield point.
	ErrStopped = errors.New("optimization stopped by caller")

	ErrInvalidParameters = errors.New("invalid optimizer parameters")
	ErrInvalidAssignment = errors.New("invalid assignment")
)

type precondition struct {
	msg string
}

func preconditionError(msg string) error {
	return &precondition{msg: msg}
}

func (p *precondition) Error() string {
	return p.msg
}

func (p *precondition) Unwrap() error {
	return ErrPrecondition
}
