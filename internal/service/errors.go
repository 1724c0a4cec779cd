package service

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// UnauthorizedError means the caller carries no customer identity.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "not authenticated"
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError is returned when the request clashes with current state.
// Seats lists the offending seat codes when the clash is over seats.
type ConflictError struct {
	Msg   string
	Seats []string
	Err   error
}

func (e ConflictError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "conflict"
	}
	if len(e.Seats) > 0 {
		return fmt.Sprintf("%s: %s", msg, strings.Join(e.Seats, ","))
	}
	return msg
}

func (e ConflictError) Unwrap() error { return e.Err }

// InternalError wraps a storage or collaborator failure.  Its message is
// safe to show to callers; the cause is only for logs.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// ConflictSeats returns the seat codes carried by a ConflictError in err's
// chain, or nil.
func ConflictSeats(err error) []string {
	var target ConflictError
	if errors.As(err, &target) {
		return target.Seats
	}
	return nil
}

func internal(msg string, err error) error {
	return InternalError{Msg: msg, Err: err}
}
