// Package api exposes the account service over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andrebq/turnstile/account"
	"github.com/andrebq/turnstile/auth"
	"github.com/andrebq/turnstile/internal/httpserver"
	"github.com/andrebq/turnstile/internal/logutil"
	"github.com/andrebq/turnstile/password"
	"github.com/julienschmidt/httprouter"
)

const (
	UsersPath         = "/api/v1/users"
	MePath            = "/api/v1/users/me"
	ResetPasswordPath = "/api/v1/reset_password"
)

func Mount(router *httprouter.Router, svc *account.Service) {
	router.HandlerFunc("POST", UsersPath, register(svc))
	router.HandlerFunc("GET", MePath, me)
	router.HandlerFunc("POST", ResetPasswordPath, resetToken(svc))
	router.HandlerFunc("PUT", ResetPasswordPath, updatePassword(svc))
}

func register(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, secret := r.FormValue("email"), r.FormValue("password")
		switch {
		case email == "":
			httpserver.WriteError(w, http.StatusBadRequest, "email missing")
			return
		case secret == "":
			httpserver.WriteError(w, http.StatusBadRequest, "password missing")
			return
		}
		p, err := svc.Register(r.Context(), email, secret)
		switch {
		case errors.Is(err, account.ErrAlreadyRegistered):
			httpserver.WriteError(w, http.StatusBadRequest, fmt.Sprintf("User %v already exists", email))
			return
		case errors.Is(err, password.ErrTooLong):
			httpserver.WriteError(w, http.StatusBadRequest, "password too long")
			return
		case err != nil:
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Unable to register user")
			httpserver.StatusError(w, http.StatusInternalServerError)
			return
		}
		httpserver.WriteJSON(w, http.StatusOK, map[string]string{
			"id":      p.ID,
			"email":   p.Email,
			"message": "user created",
		})
	}
}

func me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httpserver.StatusError(w, http.StatusNotFound)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, p)
}

func resetToken(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.FormValue("email")
		if email == "" {
			httpserver.WriteError(w, http.StatusBadRequest, "email missing")
			return
		}
		token, err := svc.ResetPasswordToken(r.Context(), email)
		switch {
		case errors.Is(err, account.ErrNotFound):
			httpserver.StatusError(w, http.StatusForbidden)
			return
		case err != nil:
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Unable to generate reset token")
			httpserver.StatusError(w, http.StatusInternalServerError)
			return
		}
		httpserver.WriteJSON(w, http.StatusOK, map[string]string{
			"email":       email,
			"reset_token": token,
		})
	}
}

func updatePassword(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, secret := r.FormValue("reset_token"), r.FormValue("new_password")
		switch {
		case token == "":
			httpserver.WriteError(w, http.StatusBadRequest, "reset_token missing")
			return
		case secret == "":
			httpserver.WriteError(w, http.StatusBadRequest, "new_password missing")
			return
		}
		err := svc.UpdatePassword(r.Context(), token, secret)
		switch {
		case errors.Is(err, account.ErrInvalidToken):
			httpserver.StatusError(w, http.StatusForbidden)
			return
		case errors.Is(err, password.ErrTooLong):
			httpserver.WriteError(w, http.StatusBadRequest, "password too long")
			return
		case err != nil:
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Unable to update password")
			httpserver.StatusError(w, http.StatusInternalServerError)
			return
		}
		httpserver.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Password updated",
		})
	}
}
