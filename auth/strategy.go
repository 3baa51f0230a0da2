package auth

import (
	"context"
	"net/http"
)

type (
	// Strategy is one authentication mode.
	//
	// ResolvePrincipal returns the principal the request belongs to. When
	// nothing can be resolved it returns a nil principal and the reason, err
	// is kept for infrastructure failures only.
	Strategy interface {
		Name() string
		RequiresAuth(path string, excluded []string) bool
		ResolvePrincipal(r *http.Request) (*Principal, Reason, error)
	}

	// SessionTokenReader is implemented by strategies that read a session
	// token from the request.
	SessionTokenReader interface {
		SessionToken(r *http.Request) (string, bool)
	}

	// SessionIssuer is implemented by strategies that can open and close
	// sessions, which is what the login and logout endpoints need.
	SessionIssuer interface {
		SessionTokenReader
		CookieName() string
		CreateSession(ctx context.Context, principalID string) (string, error)
		DestroySession(r *http.Request) (bool, error)
	}

	// NullStrategy never resolves anyone. When Locked is false nothing
	// requires auth; when true every path outside the exemptions does, which
	// effectively shuts the API down.
	NullStrategy struct {
		Locked bool
	}
)

var (
	_ Strategy = NullStrategy{}
)

func (n NullStrategy) Name() string {
	if n.Locked {
		return "auth"
	}
	return "none"
}

func (n NullStrategy) RequiresAuth(path string, excluded []string) bool {
	if !n.Locked {
		return false
	}
	return RequiresAuth(path, excluded)
}

func (NullStrategy) ResolvePrincipal(*http.Request) (*Principal, Reason, error) {
	return nil, InvalidCredentials, nil
}
