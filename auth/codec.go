package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	AuthorizationHeader = "Authorization"
	BasicScheme         = "Basic"
	CredentialSeparator = ":"
)

// AuthorizationHeaderValue returns the Authorization header verbatim.
func AuthorizationHeaderValue(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	values, ok := r.Header[AuthorizationHeader]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ExtractSchemePayload returns what follows "<scheme> " in header. The
// prefix is case sensitive and must be followed by exactly one space.
func ExtractSchemePayload(header, scheme string) (string, bool) {
	if header == "" || scheme == "" {
		return "", false
	}
	prefix := scheme + " "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// Decode applies standard base64 and requires the result to be valid utf-8.
// Any failure simply yields false.
func Decode(payload string) (string, bool) {
	if payload == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// SplitCredentialPair splits on the first separator only, so the secret may
// contain the separator itself.
func SplitCredentialPair(decoded, sep string) (id, secret string, ok bool) {
	if sep == "" {
		sep = CredentialSeparator
	}
	id, secret, ok = strings.Cut(decoded, sep)
	if !ok {
		return "", "", false
	}
	return id, secret, true
}
