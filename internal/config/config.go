package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthNone           = "none"
	AuthLocked         = "auth"
	AuthBasic          = "basic_auth"
	AuthSession        = "session_auth"
	AuthSessionExpiry  = "session_exp_auth"
	AuthSessionDurable = "session_db_auth"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	EngineRouter = "httprouter"
	EngineGin    = "gin"

	DefaultDatabasePath  = "./data/turnstile.db"
	DefaultSessionName   = "_my_session_id"
	DefaultExcludedPaths = "/api/v1/status/,/api/v1/unauthorized/,/api/v1/forbidden/,/api/v1/auth_session/login/,/api/v1/users,/api/v1/reset_password/"
)

const (
	maxSeconds = math.MaxInt64 / int64(time.Second)
)

type (
	Config struct {
		HTTP
		Auth
		Session
		Database
		Password
		Log
	}

	HTTP struct {
		Host string
		Port int
		// Upstream receives every request the API does not route itself.
		Upstream string
		Engine   string
	}
	Auth struct {
		Type          string
		ExcludedPaths []string
	}
	Session struct {
		Name string
		// Duration <= 0 disables expiry.
		Duration  time.Duration
		Backend   string
		RedisAddr string
		Cache     bool
		// CookieSecure marks the session cookie as HTTPS only. Leave it off
		// when the server is reached over plain HTTP.
		CookieSecure bool
	}
	Database struct {
		Path string
	}
	Password struct {
		Hasher     string
		BcryptCost int
	}
	Log struct {
		Level string
	}
)

// NewConfig reads the process environment and, when file is not empty,
// a config file whose keys use the same names as the environment.
func NewConfig(file string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("api_host", "0.0.0.0")
	v.SetDefault("api_port", 5000)
	v.SetDefault("upstream_url", "")
	v.SetDefault("api_engine", EngineRouter)
	v.SetDefault("auth_type", AuthNone)
	v.SetDefault("excluded_paths", DefaultExcludedPaths)
	v.SetDefault("session_name", DefaultSessionName)
	v.SetDefault("session_duration", 0)
	v.SetDefault("session_backend", BackendSQLite)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("session_cache", false)
	v.SetDefault("session_cookie_secure", false)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("password_hasher", "bcrypt")
	v.SetDefault("bcrypt_cost", 0)
	v.SetDefault("log_level", "info")
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %v, cause %w", file, err)
		}
	}

	c := &Config{
		HTTP: HTTP{
			Host:     v.GetString("api_host"),
			Port:     v.GetInt("api_port"),
			Upstream: v.GetString("upstream_url"),
			Engine:   strings.ToLower(strings.TrimSpace(v.GetString("api_engine"))),
		},
		Auth: Auth{
			Type:          strings.ToLower(strings.TrimSpace(v.GetString("auth_type"))),
			ExcludedPaths: splitList(v.GetString("excluded_paths")),
		},
		Session: Session{
			Name:      v.GetString("session_name"),
			Duration:  seconds(v.GetString("session_duration")),
			Backend:   strings.ToLower(v.GetString("session_backend")),
			RedisAddr: v.GetString("redis_addr"),
			Cache:     v.GetBool("session_cache"),

			CookieSecure: v.GetBool("session_cookie_secure"),
		},
		Database: Database{
			Path: v.GetString("database_path"),
		},
		Password: Password{
			Hasher:     v.GetString("password_hasher"),
			BcryptCost: v.GetInt("bcrypt_cost"),
		},
		Log: Log{
			Level: v.GetString("log_level"),
		},
	}
	if c.Auth.Type == "" {
		c.Auth.Type = AuthNone
	}
	if c.Session.Name == "" {
		c.Session.Name = DefaultSessionName
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	switch c.Auth.Type {
	case AuthNone, AuthLocked, AuthBasic, AuthSession, AuthSessionExpiry, AuthSessionDurable:
	default:
		return fmt.Errorf("unknown AUTH_TYPE %q", c.Auth.Type)
	}
	switch c.Session.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.HTTP.Engine {
	case EngineRouter, EngineGin:
	default:
		return fmt.Errorf("unknown API_ENGINE %q", c.HTTP.Engine)
	}
	if c.HTTP.Upstream != "" {
		u, err := url.Parse(c.HTTP.Upstream)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid UPSTREAM_URL %q", c.HTTP.Upstream)
		}
	}
	return nil
}

// Bind is the address the API listens on.
func (h HTTP) Bind() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// seconds never fails: anything that is not a positive integer means no
// expiry. Values past what a time.Duration can hold are clamped.
func seconds(raw string) time.Duration {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(raw), "-") {
		n = maxSeconds
	} else if err != nil || n <= 0 {
		return 0
	}
	if n > maxSeconds {
		n = maxSeconds
	}
	return time.Duration(n) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
