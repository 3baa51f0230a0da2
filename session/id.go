package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// IDBytes is the amount of random data behind each session id (256 bits).
	IDBytes = 32
)

type (
	// IDSource produces fresh session identifiers.
	IDSource func() (string, error)
)

// RandomID reads IDBytes from crypto/rand and encodes them as unpadded
// url-safe base64 so the id can travel in a cookie untouched.
func RandomID() (string, error) {
	return idFrom(rand.Reader)
}

func idFrom(r io.Reader) (string, error) {
	var buf [IDBytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("unable to read random session id, cause %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}
