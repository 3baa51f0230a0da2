package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/turnstile/auth"
	"github.com/andrebq/turnstile/internal/httpserver"
	"github.com/andrebq/turnstile/internal/logutil"
	"github.com/andrebq/turnstile/session"
	"github.com/julienschmidt/httprouter"
)

const (
	StatusPath       = "/api/v1/status"
	UnauthorizedPath = "/api/v1/unauthorized"
	ForbiddenPath    = "/api/v1/forbidden"
	LoginPath        = "/api/v1/auth_session/login"
	LogoutPath       = "/api/v1/auth_session/logout"
)

type (
	// Views are the endpoints every deployment exposes. Login and logout
	// are only mounted when the strategy issues sessions.
	Views struct {
		strategy       auth.Strategy
		dir            auth.Directory
		verifier       auth.Verifier
		insecureCookie bool
	}
)

func NewViews(strategy auth.Strategy, dir auth.Directory, verifier auth.Verifier, allowHTTPCookie bool) *Views {
	return &Views{
		strategy:       strategy,
		dir:            dir,
		verifier:       verifier,
		insecureCookie: allowHTTPCookie,
	}
}

func (v *Views) Mount(router *httprouter.Router) {
	router.HandlerFunc("GET", StatusPath, status)
	router.HandlerFunc("GET", UnauthorizedPath, fixedStatus(http.StatusUnauthorized))
	router.HandlerFunc("GET", ForbiddenPath, fixedStatus(http.StatusForbidden))
	if issuer, ok := v.strategy.(auth.SessionIssuer); ok {
		router.HandlerFunc("POST", LoginPath, v.login(issuer))
		router.HandlerFunc("DELETE", LogoutPath, logout(issuer))
	}
}

func status(w http.ResponseWriter, _ *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func fixedStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpserver.StatusError(w, code)
	}
}

func (v *Views) login(issuer auth.SessionIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)
		email := r.FormValue("email")
		if email == "" {
			httpserver.WriteError(w, http.StatusBadRequest, "email missing")
			return
		}
		secret := r.FormValue("password")
		if secret == "" {
			httpserver.WriteError(w, http.StatusBadRequest, "password missing")
			return
		}
		found, err := v.dir.FindPrincipals(ctx, auth.ByEmail(email))
		if err != nil {
			log.Error().Err(err).Msg("Unable to lookup principal during login")
			httpserver.StatusError(w, http.StatusServiceUnavailable)
			return
		}
		if len(found) == 0 {
			httpserver.WriteError(w, http.StatusNotFound, "no user found for this email")
			return
		}
		p := found[0]
		if !v.verifier.Verify(p.PasswordHash, []byte(secret)) {
			httpserver.WriteError(w, http.StatusUnauthorized, "wrong password")
			return
		}
		id, err := issuer.CreateSession(ctx, p.ID)
		if err != nil {
			log.Error().Err(err).Str("principal", p.ID).Msg("Unable to create session")
			code := http.StatusInternalServerError
			if errors.Is(err, session.StoreUnavailable{}) {
				code = http.StatusServiceUnavailable
			}
			httpserver.StatusError(w, code)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     issuer.CookieName(),
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   !v.insecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		httpserver.WriteJSON(w, http.StatusOK, p)
	}
}

func logout(issuer auth.SessionIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := issuer.DestroySession(r)
		if err != nil {
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Unable to destroy session")
			httpserver.StatusError(w, http.StatusServiceUnavailable)
			return
		}
		if !ok {
			httpserver.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:   issuer.CookieName(),
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		httpserver.WriteJSON(w, http.StatusOK, struct{}{})
	}
}
