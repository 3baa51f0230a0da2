package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/andrebq/turnstile/password"
	"golang.org/x/crypto/bcrypt"
)

type memDirectory struct {
	sync.Mutex
	users   []Principal
	err     error
	lookups int
}

func (m *memDirectory) FindPrincipals(_ context.Context, c Criteria) ([]Principal, error) {
	m.Lock()
	defer m.Unlock()
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	var out []Principal
	for _, u := range m.users {
		if (c.Email != "" && u.Email == c.Email) || (c.ID != "" && u.ID == c.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}

var testHasher = password.Bcrypt{Cost: bcrypt.MinCost}

func newDirectory(t *testing.T) (*memDirectory, Principal) {
	hash, err := testHasher.Hash([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	alice := Principal{ID: "alice-id", Email: "alice@example.com", PasswordHash: hash}
	return &memDirectory{users: []Principal{alice}}, alice
}

func basicHeader(user, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+secret))
}

func request(path string, mods ...func(*http.Request)) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	for _, m := range mods {
		m(req)
	}
	return req
}

func withHeader(k, v string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

var errDiskOnFire = errors.New("disk on fire")
