package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andrebq/turnstile/internal/logutil"
	"github.com/andrebq/turnstile/session"
)

const (
	DefaultSessionCookie = "_my_session_id"
)

type (
	// SessionStrategy resolves requests through a session cookie. The
	// expiring and persistent modes are the same strategy over a different
	// session.Store.
	SessionStrategy struct {
		name   string
		cookie string
		store  session.Store
		dir    Directory
	}
)

var (
	_ Strategy      = (*SessionStrategy)(nil)
	_ SessionIssuer = (*SessionStrategy)(nil)
)

// NewSessionStrategy uses an in-memory store without expiry.
func NewSessionStrategy(cookie string, dir Directory) *SessionStrategy {
	return NewSessionStrategyWithStore("session_auth", cookie, session.NewMemory(), dir)
}

// NewExpiringSessionStrategy uses an in-memory store whose sessions stop
// resolving once older than duration. duration <= 0 disables expiry.
func NewExpiringSessionStrategy(cookie string, duration time.Duration, dir Directory) *SessionStrategy {
	store := session.NewExpiring(session.NewMemory(), duration, nil)
	return NewSessionStrategyWithStore("session_exp_auth", cookie, store, dir)
}

// NewPersistentSessionStrategy keeps sessions in durable records.
func NewPersistentSessionStrategy(cookie string, records session.Records, duration time.Duration, dir Directory) *SessionStrategy {
	store := session.NewPersistent(records, duration)
	return NewSessionStrategyWithStore("session_db_auth", cookie, store, dir)
}

func NewSessionStrategyWithStore(name, cookie string, store session.Store, dir Directory) *SessionStrategy {
	if cookie == "" {
		cookie = DefaultSessionCookie
	}
	return &SessionStrategy{
		name:   name,
		cookie: cookie,
		store:  store,
		dir:    dir,
	}
}

func (s *SessionStrategy) Name() string       { return s.name }
func (s *SessionStrategy) CookieName() string { return s.cookie }

func (s *SessionStrategy) RequiresAuth(path string, excluded []string) bool {
	return RequiresAuth(path, excluded)
}

func (s *SessionStrategy) SessionToken(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(s.cookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *SessionStrategy) ResolvePrincipal(r *http.Request) (*Principal, Reason, error) {
	token, ok := s.SessionToken(r)
	if !ok {
		return nil, InvalidCredentials, nil
	}
	ctx := r.Context()
	principalID, err := s.store.Lookup(ctx, token)
	switch {
	case errors.Is(err, session.ErrExpired):
		return nil, ExpiredSession, nil
	case errors.Is(err, session.ErrNotFound):
		return nil, UnknownSession, nil
	case err != nil:
		return nil, UnknownSession, err
	}
	p, err := findOne(ctx, s.dir, ByID(principalID))
	if err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Str("strategy", s.name).Msg("Unable to lookup session owner")
		return nil, InvalidCredentials, nil
	}
	if p == nil {
		return nil, InvalidCredentials, nil
	}
	return p, NoReason, nil
}

func (s *SessionStrategy) CreateSession(ctx context.Context, principalID string) (string, error) {
	return s.store.Create(ctx, principalID)
}

// DestroySession removes the session named by the request cookie. It
// returns false when the request carries no live session.
func (s *SessionStrategy) DestroySession(r *http.Request) (bool, error) {
	token, ok := s.SessionToken(r)
	if !ok {
		return false, nil
	}
	return s.store.Destroy(r.Context(), token)
}
