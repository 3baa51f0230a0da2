package auth

import (
	"context"
)

type (
	// Principal is the actor a request is attributed to. It is owned by
	// the user store, this package only reads it.
	Principal struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		PasswordHash []byte `json:"-"`
	}

	// Criteria selects principals. Exactly one field is expected to be set.
	Criteria struct {
		Email        string
		ID           string
		SessionToken string
		ResetToken   string
	}

	// Directory is the user store. Finding nothing is not an error, callers
	// must check the length of the result.
	Directory interface {
		FindPrincipals(ctx context.Context, c Criteria) ([]Principal, error)
	}

	// Verifier checks a secret against a stored one-way hash.
	Verifier interface {
		Verify(hash, secret []byte) bool
	}
)

func ByEmail(email string) Criteria     { return Criteria{Email: email} }
func ByID(id string) Criteria           { return Criteria{ID: id} }
func BySessionToken(tk string) Criteria { return Criteria{SessionToken: tk} }
func ByResetToken(tk string) Criteria   { return Criteria{ResetToken: tk} }

// Empty reports whether no field is set.
func (c Criteria) Empty() bool {
	return c == Criteria{}
}

// findOne returns the first principal matching c, or nil when there is none.
func findOne(ctx context.Context, dir Directory, c Criteria) (*Principal, error) {
	found, err := dir.FindPrincipals(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	p := found[0]
	return &p, nil
}
