package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type (
	Hasher interface {
		Hash(secret []byte) ([]byte, error)
		Verify(hash, secret []byte) bool
	}

	Bcrypt struct {
		Cost int
	}
)

var (
	ErrEmptySecret = errors.New("password: secret cannot be empty")
	ErrTooLong     = errors.New("password: bcrypt secrets are limited to 72 bytes")
)

// ByName returns the hasher registered under name: "bcrypt" (default) or
// "argon2id".
func ByName(name string, bcryptCost int, pepper *Key) (Hasher, error) {
	switch name {
	case "", "bcrypt":
		return Bcrypt{Cost: bcryptCost}, nil
	case "argon2id":
		return NewArgon2id(DefaultArgon2Params, pepper), nil
	}
	return nil, fmt.Errorf("password: unknown hasher %q", name)
}

func (b Bcrypt) cost() int {
	if b.Cost < bcrypt.MinCost || b.Cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b Bcrypt) Hash(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(secret) > 72 {
		return nil, ErrTooLong
	}
	h, err := bcrypt.GenerateFromPassword(secret, b.cost())
	if err != nil {
		return nil, fmt.Errorf("password: unable to hash secret, cause %w", err)
	}
	return h, nil
}

func (b Bcrypt) Verify(hash, secret []byte) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, secret) == nil
}
