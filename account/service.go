// Package account manages the principals the authentication strategies
// resolve: registration, password checks and password resets.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebq/turnstile/auth"
	"github.com/andrebq/turnstile/password"
	"github.com/andrebq/turnstile/userdb"
	"github.com/google/uuid"
)

type (
	// Users is the storage the service needs, userdb.DB implements it.
	Users interface {
		auth.Directory
		AddUser(ctx context.Context, email string, passwordHash []byte) (auth.Principal, error)
		UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error
		SetResetToken(ctx context.Context, userID, token string) error
	}

	Service struct {
		users  Users
		hasher password.Hasher
	}
)

var (
	_ Users = (*userdb.DB)(nil)

	ErrAlreadyRegistered = errors.New("account: email already registered")
	ErrNotFound          = errors.New("account: no user found for this email")
	ErrInvalidToken      = errors.New("account: invalid reset token")
	ErrMissingEmail      = errors.New("account: email missing")
)

func NewService(users Users, hasher password.Hasher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
	}
}

// Hasher returns the hasher used for stored passwords, strategies need it to
// verify credentials.
func (s *Service) Hasher() password.Hasher {
	return s.hasher
}

func (s *Service) Register(ctx context.Context, email, secret string) (auth.Principal, error) {
	if email == "" {
		return auth.Principal{}, ErrMissingEmail
	}
	hash, err := s.hasher.Hash([]byte(secret))
	if err != nil {
		return auth.Principal{}, err
	}
	p, err := s.users.AddUser(ctx, email, hash)
	var dup userdb.DuplicateEmail
	if errors.As(err, &dup) {
		return auth.Principal{}, ErrAlreadyRegistered
	} else if err != nil {
		return auth.Principal{}, fmt.Errorf("unable to register %v, cause %w", email, err)
	}
	return p, nil
}

// ValidLogin reports whether secret is the password of the user holding
// email. Lookup failures count as an invalid login.
func (s *Service) ValidLogin(ctx context.Context, email, secret string) bool {
	if email == "" || secret == "" {
		return false
	}
	p, err := s.findOne(ctx, auth.ByEmail(email))
	if err != nil {
		return false
	}
	return s.hasher.Verify(p.PasswordHash, []byte(secret))
}

// ResetPasswordToken stores a fresh token on the user and returns it.
func (s *Service) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", ErrMissingEmail
	}
	p, err := s.findOne(ctx, auth.ByEmail(email))
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	err = s.users.SetResetToken(ctx, p.ID, token)
	if err != nil {
		return "", fmt.Errorf("unable to store reset token, cause %w", err)
	}
	return token, nil
}

// UpdatePassword consumes token and replaces the password of its owner.
func (s *Service) UpdatePassword(ctx context.Context, token, secret string) error {
	if token == "" {
		return ErrInvalidToken
	}
	p, err := s.findOne(ctx, auth.ByResetToken(token))
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidToken
	} else if err != nil {
		return err
	}
	hash, err := s.hasher.Hash([]byte(secret))
	if err != nil {
		return err
	}
	err = s.users.UpdatePassword(ctx, p.ID, hash)
	if err != nil {
		return fmt.Errorf("unable to update password, cause %w", err)
	}
	return nil
}

func (s *Service) findOne(ctx context.Context, c auth.Criteria) (auth.Principal, error) {
	found, err := s.users.FindPrincipals(ctx, c)
	if err != nil {
		return auth.Principal{}, err
	}
	if len(found) == 0 {
		return auth.Principal{}, ErrNotFound
	}
	return found[0], nil
}
