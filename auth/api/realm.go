// Package api exposes the authentication filter and the session endpoints
// over HTTP.
package api

import (
	"net/http"

	"github.com/andrebq/turnstile/auth"
	"github.com/andrebq/turnstile/internal/httpserver"
)

type (
	// Realm runs the filter in front of a handler.
	Realm struct {
		filter *auth.Filter
	}
)

func NewRealm(filter *auth.Filter) *Realm {
	return &Realm{filter: filter}
}

// Protect only calls sensitive when the filter lets the request through.
// Authenticated principals are available to sensitive via
// auth.PrincipalFrom.
func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := s.filter.Authenticate(r)
		if err != nil {
			httpserver.StatusError(w, http.StatusServiceUnavailable)
			return
		}
		if !d.Proceed() {
			httpserver.StatusError(w, d.StatusCode())
			return
		}
		if d.Principal != nil {
			r = r.WithContext(auth.WithPrincipal(r.Context(), d.Principal))
		}
		sensitive.ServeHTTP(w, r)
	})
}
