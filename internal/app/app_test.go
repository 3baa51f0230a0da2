package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andrebq/turnstile/internal/config"
	"github.com/andrebq/turnstile/internal/testutil"
	"github.com/andrebq/turnstile/internal/upstream"
	"github.com/gin-gonic/gin"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func bodyContains(text string) apitest.Assert {
	return func(res *http.Response, _ *http.Request) error {
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if !strings.Contains(string(body), text) {
			return fmt.Errorf("body does not contain %q:\n%s", text, body)
		}
		return nil
	}
}

func testConfig(t *testing.T, authType string) *config.Config {
	return &config.Config{
		Auth: config.Auth{
			Type:          authType,
			ExcludedPaths: strings.Split(config.DefaultExcludedPaths, ","),
		},
		Session: config.Session{
			Name:     "sid",
			Duration: time.Hour,
			Backend:  config.BackendSQLite,
		},
		Database: config.Database{Path: filepath.Join(t.TempDir(), "turnstile.db")},
		Password: config.Password{Hasher: "bcrypt", BcryptCost: bcrypt.MinCost},
	}
}

func TestStrategySelection(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{
		config.AuthNone,
		config.AuthLocked,
		config.AuthBasic,
		config.AuthSession,
		config.AuthSessionExpiry,
		config.AuthSessionDurable,
	} {
		a, err := Open(ctx, testConfig(t, name), nil)
		require.NoError(t, err, name)
		require.Equal(t, name, a.Strategy.Name())
		require.NoError(t, a.Close())
	}

	_, err := Open(ctx, testConfig(t, "kerberos"), nil)
	require.Error(t, err)
}

func TestSessionLifecycleOverRedis(t *testing.T) {
	ctx := context.Background()
	_, client, cleanup := testutil.AcquireRedis(t)
	defer cleanup()

	cfg := testConfig(t, config.AuthSessionDurable)
	cfg.Session.Backend = config.BackendRedis
	cfg.Session.Cache = true
	a, err := Open(ctx, cfg, nil, WithRedis(client))
	require.NoError(t, err)
	defer a.Close()

	handler := a.Handler()
	apitest.Handler(handler).Post("/api/v1/users").
		FormData("email", "alice@example.com").FormData("password", "secret").
		Expect(t).Status(http.StatusOK).End()

	res := apitest.Handler(handler).Post("/api/v1/auth_session/login").
		FormData("email", "alice@example.com").FormData("password", "secret").
		Expect(t).Status(http.StatusOK).CookiePresent("sid").End()
	var sid string
	for _, c := range res.Response.Cookies() {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)
	keys, err := client.Keys(ctx, "turnstile:session:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)

	apitest.Handler(handler).Get("/api/v1/users/me").Cookie("sid", sid).Expect(t).
		Status(http.StatusOK).Assert(jsonpath.Equal("$.email", "alice@example.com")).End()
	apitest.Handler(handler).Delete("/api/v1/auth_session/logout").Cookie("sid", sid).Expect(t).
		Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/api/v1/users/me").Cookie("sid", sid).Expect(t).
		Status(http.StatusForbidden).End()

	apitest.Handler(handler).Get(MetricsPath).Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains(`turnstile_auth_decisions_total{outcome="authenticated",reason="none",strategy="session_db_auth"} 2`)).
		End()
}

func TestUpstreamBehindFilter(t *testing.T) {
	ctx := context.Background()
	var principal string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = r.Header.Get(upstream.PrincipalHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer backend.Close()

	cfg := testConfig(t, config.AuthBasic)
	cfg.HTTP.Upstream = backend.URL
	a, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	_, err = a.Accounts.Register(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	handler := a.Handler()
	apitest.Handler(handler).Get("/reports/today").Expect(t).
		Status(http.StatusUnauthorized).End()
	require.Empty(t, principal)
	apitest.Handler(handler).Get("/reports/today").BasicAuth("alice@example.com", "secret").Expect(t).
		Status(http.StatusNoContent).End()
	require.NotEmpty(t, principal)
}

func login(t *testing.T, handler http.Handler, cookie string) *http.Cookie {
	res := apitest.Handler(handler).Post("/api/v1/auth_session/login").
		FormData("email", "alice@example.com").FormData("password", "secret").
		Expect(t).Status(http.StatusOK).CookiePresent(cookie).End()
	for _, c := range res.Response.Cookies() {
		if c.Name == cookie {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func TestSessionCookieSecurity(t *testing.T) {
	ctx := context.Background()
	for _, secure := range []bool{false, true} {
		cfg := testConfig(t, config.AuthSession)
		cfg.Session.CookieSecure = secure
		a, err := Open(ctx, cfg, nil)
		require.NoError(t, err)
		_, err = a.Accounts.Register(ctx, "alice@example.com", "secret")
		require.NoError(t, err)

		c := login(t, a.Handler(), "sid")
		require.Equal(t, secure, c.Secure)
		require.True(t, c.HttpOnly)
		require.NoError(t, a.Close())
	}
}

func TestGinEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	cfg := testConfig(t, config.AuthSessionExpiry)
	cfg.HTTP.Engine = config.EngineGin
	a, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	handler := a.Handler()

	apitest.Handler(handler).Post("/api/v1/users").
		FormData("email", "alice@example.com").FormData("password", "secret").
		Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/api/v1/status").Expect(t).
		Status(http.StatusOK).Assert(jsonpath.Equal("$.status", "OK")).End()
	apitest.Handler(handler).Get("/api/v1/users/me").Expect(t).
		Status(http.StatusUnauthorized).Assert(jsonpath.Equal("$.error", "Unauthorized")).End()
	apitest.Handler(handler).Get("/reports").Expect(t).
		Status(http.StatusUnauthorized).End()

	sid := login(t, handler, "sid")
	apitest.Handler(handler).Get("/api/v1/users/me").Cookie("sid", sid.Value).Expect(t).
		Status(http.StatusOK).Assert(jsonpath.Equal("$.email", "alice@example.com")).End()
	apitest.Handler(handler).Get("/reports").Cookie("sid", sid.Value).Expect(t).
		Status(http.StatusNotFound).Assert(jsonpath.Equal("$.error", "Not Found")).End()
	apitest.Handler(handler).Delete("/api/v1/auth_session/logout").Cookie("sid", sid.Value).Expect(t).
		Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/api/v1/users/me").Cookie("sid", sid.Value).Expect(t).
		Status(http.StatusForbidden).End()

	apitest.Handler(handler).Get(MetricsPath).Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains(`turnstile_auth_decisions_total{outcome="rejected",reason="unknown_session",strategy="session_exp_auth"} 1`)).
		End()
}
