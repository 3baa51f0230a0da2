package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, AuthNone, c.Auth.Type)
	require.Equal(t, DefaultSessionName, c.Session.Name)
	require.Equal(t, time.Duration(0), c.Session.Duration)
	require.Equal(t, BackendSQLite, c.Session.Backend)
	require.Equal(t, "0.0.0.0:5000", c.HTTP.Bind())
	require.Equal(t, []string{
		"/api/v1/status/",
		"/api/v1/unauthorized/",
		"/api/v1/forbidden/",
		"/api/v1/auth_session/login/",
		"/api/v1/users",
		"/api/v1/reset_password/",
	}, c.Auth.ExcludedPaths)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("AUTH_TYPE", "session_exp_auth")
	t.Setenv("SESSION_NAME", "sid")
	t.Setenv("SESSION_DURATION", "60")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_CACHE", "true")
	t.Setenv("API_PORT", "8080")
	t.Setenv("EXCLUDED_PATHS", " /a/*, ,/b ")

	c, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, AuthSessionExpiry, c.Auth.Type)
	require.Equal(t, "sid", c.Session.Name)
	require.Equal(t, time.Minute, c.Session.Duration)
	require.Equal(t, BackendRedis, c.Session.Backend)
	require.True(t, c.Session.Cache)
	require.Equal(t, 8080, c.HTTP.Port)
	require.Equal(t, []string{"/a/*", "/b"}, c.Auth.ExcludedPaths)
}

func TestSessionDurationIsLenient(t *testing.T) {
	for _, raw := range []string{"abc", "-5", "0", "1.5", ""} {
		t.Setenv("SESSION_DURATION", raw)
		c, err := NewConfig("")
		require.NoError(t, err, raw)
		require.Equal(t, time.Duration(0), c.Session.Duration, raw)
	}
}

func TestSessionDurationClamped(t *testing.T) {
	for _, raw := range []string{"9223372036854775807", "99999999999999999999999"} {
		t.Setenv("SESSION_DURATION", raw)
		c, err := NewConfig("")
		require.NoError(t, err, raw)
		require.Equal(t, time.Duration(maxSeconds)*time.Second, c.Session.Duration, raw)
		require.Greater(t, c.Session.Duration, 100*365*24*time.Hour, raw)
	}
	t.Setenv("SESSION_DURATION", "-99999999999999999999999")
	c, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), c.Session.Duration)
}

func TestCookieAndEngine(t *testing.T) {
	c, err := NewConfig("")
	require.NoError(t, err)
	require.False(t, c.Session.CookieSecure)
	require.Equal(t, EngineRouter, c.HTTP.Engine)

	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("API_ENGINE", "gin")
	c, err = NewConfig("")
	require.NoError(t, err)
	require.True(t, c.Session.CookieSecure)
	require.Equal(t, EngineGin, c.HTTP.Engine)

	t.Setenv("API_ENGINE", "martini")
	_, err = NewConfig("")
	require.Error(t, err)
}

func TestUnknownAuthType(t *testing.T) {
	t.Setenv("AUTH_TYPE", "kerberos")
	_, err := NewConfig("")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "turnstile.yaml")
	require.NoError(t, os.WriteFile(file, []byte("auth_type: basic_auth\napi_port: 9000\n"), 0644))
	c, err := NewConfig(file)
	require.NoError(t, err)
	require.Equal(t, AuthBasic, c.Auth.Type)
	require.Equal(t, 9000, c.HTTP.Port)

	_, err = NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestUpstreamURL(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://localhost:9000")
	c, err := NewConfig("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", c.HTTP.Upstream)

	t.Setenv("UPSTREAM_URL", "localhost")
	_, err = NewConfig("")
	require.Error(t, err)
}
