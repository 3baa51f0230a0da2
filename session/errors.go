package session

import (
	"errors"
	"fmt"
)

type (
	// StoreUnavailable is returned when the backing records could not be
	// reached. It is the only error a Store returns that callers should
	// treat as an infrastructure failure.
	StoreUnavailable struct {
		Op    string
		cause error
	}
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrExpired        = errors.New("session expired")
	ErrEmptyPrincipal = errors.New("cannot create a session without a principal")
)

func (s StoreUnavailable) Error() string {
	return fmt.Sprintf("session store unavailable during %v, cause %v", s.Op, s.cause)
}

func (s StoreUnavailable) Unwrap() error {
	return s.cause
}

// Is makes errors.Is(err, StoreUnavailable{}) match any operation.
func (s StoreUnavailable) Is(target error) bool {
	_, ok := target.(StoreUnavailable)
	return ok
}

// IsNegative reports whether err is an ordinary "no such session" result.
func IsNegative(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired)
}

func unavailable(op string, err error) error {
	if err == nil || IsNegative(err) || errors.Is(err, StoreUnavailable{}) {
		return err
	}
	return StoreUnavailable{Op: op, cause: err}
}
