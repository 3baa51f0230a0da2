package httpserver

import (
	"encoding/json"
	"net/http"
)

type (
	// ErrorBody is the payload of every error response.
	ErrorBody struct {
		Error string `json:"error"`
	}
)

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// StatusError writes the canonical error body for status.
func StatusError(w http.ResponseWriter, status int) {
	WriteError(w, status, http.StatusText(status))
}
