package auth

import (
	"net/http"

	"github.com/andrebq/turnstile/internal/logutil"
)

type (
	// Filter is invoked before every route. It holds no session state
	// itself, everything is delegated to the configured Strategy.
	Filter struct {
		strategy Strategy
		excluded []string
		metrics  *Metrics
	}

	FilterOption func(*Filter)
)

// WithMetrics records every decision in m.
func WithMetrics(m *Metrics) FilterOption {
	return func(f *Filter) { f.metrics = m }
}

func NewFilter(strategy Strategy, excluded []string, opts ...FilterOption) *Filter {
	f := &Filter{
		strategy: strategy,
		excluded: append([]string(nil), excluded...),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Filter) Strategy() Strategy {
	return f.strategy
}

// Excluded returns a copy of the exempt path patterns.
func (f *Filter) Excluded() []string {
	return append([]string(nil), f.excluded...)
}

// Authenticate evaluates r once. The returned error is only set when the
// session backend is unavailable, in which case the decision is a rejection
// that callers should report as a server failure.
func (f *Filter) Authenticate(r *http.Request) (Decision, error) {
	d, err := f.decide(r)
	f.metrics.observe(f.strategy.Name(), d, err)
	log := logutil.GetOrDefault(r.Context())
	if err != nil {
		log.Error().Err(err).Str("strategy", f.strategy.Name()).Str("path", r.URL.Path).Msg("Unable to authenticate request")
	} else if d.Outcome == Rejected {
		log.Debug().Str("strategy", f.strategy.Name()).Str("path", r.URL.Path).Stringer("reason", d.Reason).Msg("Request rejected")
	}
	return d, err
}

func (f *Filter) decide(r *http.Request) (Decision, error) {
	if !f.strategy.RequiresAuth(r.URL.Path, f.excluded) {
		return allow(), nil
	}
	if !f.presentsCredentials(r) {
		return reject(MissingCredentials), nil
	}
	p, reason, err := f.strategy.ResolvePrincipal(r)
	if err != nil {
		return reject(reason), err
	}
	if p == nil {
		if reason == NoReason {
			reason = InvalidCredentials
		}
		return reject(reason), nil
	}
	return accept(p), nil
}

// presentsCredentials is true when the request carries an Authorization
// header or, for session strategies, a session cookie.
func (f *Filter) presentsCredentials(r *http.Request) bool {
	if hdr, ok := AuthorizationHeaderValue(r); ok && hdr != "" {
		return true
	}
	if tr, ok := f.strategy.(SessionTokenReader); ok {
		_, ok := tr.SessionToken(r)
		return ok
	}
	return false
}
