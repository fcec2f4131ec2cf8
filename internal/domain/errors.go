package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors shared by repositories, services, and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidArgument is returned by the reservation service for non-positive ticket counts.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrCapacityExhausted     = errors.New("event is sold out")
	ErrValidation            = errors.New("validation failed")
	ErrPersistenceFailure    = errors.New("registration could not be saved")
	ErrEventClosed           = errors.New("event is not open for registration")
	ErrExternalRegistration  = errors.New("event uses external registration")
	ErrCapacityBelowReserved = errors.New("capacity is below the number of spots already reserved")
	ErrAlreadyCancelled      = errors.New("registration already cancelled")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrSelfRoleChange     = errors.New("administrators cannot change their own role")
	ErrInviteInvalid      = errors.New("invitation is invalid")
	ErrInviteUsed         = errors.New("invitation has already been used")
	ErrInviteExpired      = errors.New("invitation has expired")
)

// ValidationErrors maps a field name to a human readable message.
// It unwraps to ErrValidation so callers can match it with errors.Is.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+v[f])
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }
