// Package upstream forwards requests the API does not route itself to the
// application turnstile protects.
package upstream

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/andrebq/turnstile/auth"
	"github.com/andrebq/turnstile/internal/httpserver"
	"github.com/andrebq/turnstile/internal/logutil"
)

const (
	PrincipalHeader = "X-Turnstile-Principal"
	EmailHeader     = "X-Turnstile-Email"
)

// Handler proxies to target. Identity headers coming from the client are
// dropped and replaced by the principal the filter attached, if any.
func Handler(target *url.URL) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Header.Del(PrincipalHeader)
		r.Header.Del(EmailHeader)
		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			r.Header.Set(PrincipalHeader, p.ID)
			r.Header.Set(EmailHeader, p.Email)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("upstream", target.String()).Msg("Upstream call failed")
		httpserver.StatusError(w, http.StatusBadGateway)
	}
	return proxy
}
