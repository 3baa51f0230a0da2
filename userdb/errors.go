package userdb

import (
	"errors"
	"fmt"
)

type (
	DuplicateEmail struct {
		Email string
	}
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrInvalidCriteria = errors.New("exactly one lookup criteria must be provided")
)

func (d DuplicateEmail) Error() string {
	return fmt.Sprintf("user %v already exists", d.Email)
}
