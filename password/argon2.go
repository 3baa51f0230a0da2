package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

type (
	Argon2Params struct {
		Time    uint32
		Memory  uint32
		Threads uint8
		SaltLen uint32
		KeyLen  uint32
	}

	Argon2id struct {
		params Argon2Params
		pepper *Key
		rand   io.Reader
	}
)

var (
	DefaultArgon2Params = Argon2Params{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 2,
		SaltLen: 16,
		KeyLen:  32,
	}
)

// NewArgon2id returns a hasher; pepper may be nil.
func NewArgon2id(params Argon2Params, pepper *Key) *Argon2id {
	return &Argon2id{
		params: params,
		pepper: pepper,
		rand:   rand.Reader,
	}
}

func (a *Argon2id) input(secret []byte) []byte {
	if a.pepper == nil {
		return secret
	}
	mac := hmac.New(sha256.New, a.pepper[:])
	mac.Write(secret)
	return mac.Sum(nil)
}

// Hash encodes as $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>.
func (a *Argon2id) Hash(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	salt := make([]byte, a.params.SaltLen)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return nil, fmt.Errorf("password: unable to read salt, cause %w", err)
	}
	p := a.params
	key := argon2.IDKey(a.input(secret), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	enc := base64.RawStdEncoding
	return []byte(fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(key))), nil
}

func (a *Argon2id) Verify(hash, secret []byte) bool {
	p, salt, key, ok := parseArgon2(string(hash))
	if !ok {
		return false
	}
	other := argon2.IDKey(a.input(secret), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1
}

func parseArgon2(encoded string) (Argon2Params, []byte, []byte, bool) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || p.Threads == 0 {
		return p, nil, nil, false
	}
	return p, salt, key, true
}
