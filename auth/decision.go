package auth

import (
	"net/http"
)

type (
	Outcome uint8
	Reason  uint8

	// Decision is the result of authenticating one request.
	Decision struct {
		Outcome   Outcome
		Principal *Principal
		Reason    Reason
	}
)

const (
	NotRequired Outcome = iota
	Authenticated
	Rejected
)

const (
	NoReason Reason = iota
	MissingCredentials
	InvalidCredentials
	ExpiredSession
	UnknownSession
)

func (o Outcome) String() string {
	switch o {
	case NotRequired:
		return "not_required"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

func (r Reason) String() string {
	switch r {
	case NoReason:
		return "none"
	case MissingCredentials:
		return "missing_credentials"
	case InvalidCredentials:
		return "invalid_credentials"
	case ExpiredSession:
		return "expired_session"
	case UnknownSession:
		return "unknown_session"
	}
	return "unknown"
}

func allow() Decision {
	return Decision{Outcome: NotRequired}
}

func accept(p *Principal) Decision {
	return Decision{Outcome: Authenticated, Principal: p}
}

func reject(r Reason) Decision {
	return Decision{Outcome: Rejected, Reason: r}
}

// Proceed reports whether the request may reach the route handler.
func (d Decision) Proceed() bool {
	return d.Outcome != Rejected
}

// StatusCode maps a rejection to the HTTP status the client should see.
// Requests that proceed map to 200.
func (d Decision) StatusCode() int {
	if d.Outcome != Rejected {
		return http.StatusOK
	}
	if d.Reason == MissingCredentials {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}
