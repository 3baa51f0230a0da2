package password

import (
	"encoding/base64"
	"fmt"
	"os"
)

const (
	PepperEnvVar = "TURNSTILE_PASSWORD_PEPPER"
)

type (
	Key [32]byte
)

func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// PepperFromEnv reads a base64 encoded 32 byte key from varname and clears
// the variable afterwards. An empty variable means no pepper and returns a
// nil key.
func PepperFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (*Key, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if val == "" {
		return nil, nil
	}
	setfn(varname, "")
	raw, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("password: cannot decode string to valid key, cause %v", err)
	}
	var pepper Key
	if len(raw) != len(pepper) {
		return nil, fmt.Errorf("password: decoded key has %v bytes expecting %v", len(raw), len(pepper))
	}
	copy(pepper[:], raw)
	for i := range raw {
		raw[i] = 0
	}
	return &pepper, nil
}
