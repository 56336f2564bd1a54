package allocation

import "errors"

var (
	// ErrInputInconsistency marks inputs that cannot produce a meaningful plan.
	ErrInputInconsistency = errors.New("input inconsistency")
	// ErrConstraintViolation marks a produced plan that breaks a seating invariant.
	ErrConstraintViolation = errors.New("constraint violation")
)
