package password

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var (
	fastArgon2 = Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
)

func TestBcrypt(t *testing.T) {
	h := Bcrypt{Cost: bcrypt.MinCost}
	hash, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(hash, []byte("secret")) {
		t.Fatal("hash must not be the secret")
	}
	if !h.Verify(hash, []byte("secret")) {
		t.Fatal("secret should verify")
	}
	if h.Verify(hash, []byte("wrong")) {
		t.Fatal("wrong secret must not verify")
	}
	if h.Verify(nil, []byte("secret")) {
		t.Fatal("empty hash must not verify")
	}
	if _, err := h.Hash(nil); err != ErrEmptySecret {
		t.Fatalf("expecting %v got %v", ErrEmptySecret, err)
	}
	if _, err := h.Hash(bytes.Repeat([]byte("a"), 73)); err != ErrTooLong {
		t.Fatalf("expecting %v got %v", ErrTooLong, err)
	}
}

func TestArgon2id(t *testing.T) {
	h := NewArgon2id(fastArgon2, nil)
	hash, err := h.Hash([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(hash, []byte("$argon2id$v=19$m=1024,t=1,p=1$")) {
		t.Fatalf("unexpected encoding %s", hash)
	}
	if !h.Verify(hash, []byte("secret")) {
		t.Fatal("secret should verify")
	}
	if h.Verify(hash, []byte("wrong")) {
		t.Fatal("wrong secret must not verify")
	}
	for _, bad := range []string{"", "$argon2i$v=19$m=1,t=1,p=1$AAAA$AAAA", "$argon2id$v=19$garbage$AAAA$AAAA", "not a hash"} {
		if h.Verify([]byte(bad), []byte("secret")) {
			t.Fatalf("%q must not verify", bad)
		}
	}
}

func TestArgon2idPepper(t *testing.T) {
	var pepper Key
	copy(pepper[:], "0123456789abcdef0123456789abcdef")
	peppered := NewArgon2id(fastArgon2, &pepper)
	hash, err := peppered.Hash([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if !peppered.Verify(hash, []byte("secret")) {
		t.Fatal("secret should verify with the same pepper")
	}
	if NewArgon2id(fastArgon2, nil).Verify(hash, []byte("secret")) {
		t.Fatal("hash must not verify without the pepper")
	}
}

func TestPepperFromEnv(t *testing.T) {
	env := map[string]string{
		PepperEnvVar: "blmHX4evD5FygUEa3EWxjzuAPF7lC4sKuWBrhgti/20=",
	}
	get := func(k string) string { return env[k] }
	set := func(k, v string) error { env[k] = v; return nil }

	pepper, err := PepperFromEnv(PepperEnvVar, get, set)
	if err != nil {
		t.Fatal(err)
	}
	if pepper == nil {
		t.Fatal("pepper should be set")
	}
	if env[PepperEnvVar] != "" {
		t.Fatal("reading the pepper should remove it from the environment")
	}

	pepper, err = PepperFromEnv(PepperEnvVar, get, set)
	if err != nil || pepper != nil {
		t.Fatalf("empty variable means no pepper, got %v %v", pepper, err)
	}

	env[PepperEnvVar] = "c2hvcnQ="
	if _, err := PepperFromEnv(PepperEnvVar, get, set); err == nil {
		t.Fatal("short keys must be rejected")
	}
	env[PepperEnvVar] = "not base64!"
	if _, err := PepperFromEnv(PepperEnvVar, get, set); err == nil {
		t.Fatal("invalid base64 must be rejected")
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "bcrypt", "argon2id"} {
		if _, err := ByName(name, bcrypt.MinCost, nil); err != nil {
			t.Fatalf("%q: %v", name, err)
		}
	}
	if _, err := ByName("md5", 0, nil); err == nil {
		t.Fatal("unknown hashers must fail")
	}
}
