// Package app assembles a running API out of a config.Config.
package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/andrebq/turnstile/account"
	accountapi "github.com/andrebq/turnstile/account/api"
	"github.com/andrebq/turnstile/auth"
	authapi "github.com/andrebq/turnstile/auth/api"
	"github.com/andrebq/turnstile/auth/ginauth"
	"github.com/andrebq/turnstile/internal/config"
	"github.com/andrebq/turnstile/internal/httpserver"
	"github.com/andrebq/turnstile/internal/logutil"
	"github.com/andrebq/turnstile/internal/upstream"
	"github.com/andrebq/turnstile/password"
	"github.com/andrebq/turnstile/session"
	"github.com/andrebq/turnstile/userdb"
	"github.com/gin-gonic/gin"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	CacheWindow = 30 * time.Second
	MetricsPath = "/metrics"
)

type (
	App struct {
		Config   *config.Config
		DB       *userdb.DB
		Accounts *account.Service
		Strategy auth.Strategy
		Filter   *auth.Filter
		Registry *prometheus.Registry

		redis    redis.UniversalClient
		upstream *url.URL
		closers  []func() error
	}

	Option func(*App)
)

// WithRedis makes the redis backend use client instead of dialing
// REDIS_ADDR. The caller keeps ownership of client.
func WithRedis(client redis.UniversalClient) Option {
	return func(a *App) { a.redis = client }
}

// Open connects to every backend cfg names and builds the strategy.
func Open(ctx context.Context, cfg *config.Config, pepper *password.Key, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}
	for _, o := range opts {
		o(a)
	}
	err := a.open(ctx, pepper)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context, pepper *password.Key) error {
	var err error
	a.DB, err = userdb.Open(ctx, a.Config.Database.Path)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, a.DB.Close)

	hasher, err := password.ByName(a.Config.Password.Hasher, a.Config.Password.BcryptCost, pepper)
	if err != nil {
		return err
	}
	a.Accounts = account.NewService(a.DB, hasher)

	if a.Config.HTTP.Upstream != "" {
		a.upstream, err = url.Parse(a.Config.HTTP.Upstream)
		if err != nil {
			return fmt.Errorf("invalid upstream %v, cause %w", a.Config.HTTP.Upstream, err)
		}
	}

	a.Strategy, err = a.strategy(ctx, hasher)
	if err != nil {
		return err
	}
	metrics, err := auth.NewMetrics(a.Registry)
	if err != nil {
		return err
	}
	a.Filter = auth.NewFilter(a.Strategy, a.Config.Auth.ExcludedPaths, auth.WithMetrics(metrics))
	log := logutil.GetOrDefault(ctx)
	log.Info().
		Str("strategy", a.Strategy.Name()).
		Strs("excluded", a.Filter.Excluded()).
		Msg("Authentication configured")
	return nil
}

func (a *App) strategy(ctx context.Context, verifier auth.Verifier) (auth.Strategy, error) {
	s := a.Config.Session
	switch a.Config.Auth.Type {
	case config.AuthNone:
		return auth.NullStrategy{}, nil
	case config.AuthLocked:
		return auth.NullStrategy{Locked: true}, nil
	case config.AuthBasic:
		return auth.NewBasicStrategy(a.DB, verifier), nil
	case config.AuthSession:
		return auth.NewSessionStrategy(s.Name, a.DB), nil
	case config.AuthSessionExpiry:
		return auth.NewExpiringSessionStrategy(s.Name, s.Duration, a.DB), nil
	case config.AuthSessionDurable:
		records, err := a.records(ctx)
		if err != nil {
			return nil, err
		}
		return auth.NewPersistentSessionStrategy(s.Name, records, s.Duration, a.DB), nil
	}
	return nil, fmt.Errorf("unknown AUTH_TYPE %q", a.Config.Auth.Type)
}

func (a *App) records(ctx context.Context) (session.Records, error) {
	s := a.Config.Session
	var records session.Records = a.DB
	if s.Backend == config.BackendRedis {
		client := a.redis
		if client == nil {
			owned := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
			a.closers = append(a.closers, owned.Close)
			client = owned
		}
		err := client.Ping(ctx).Err()
		if err != nil {
			return nil, fmt.Errorf("unable to reach redis at %v, cause %w", s.RedisAddr, err)
		}
		records = session.NewRedisRecords(client, session.DefaultRedisPrefix, s.Duration)
	}
	if !s.Cache {
		return records, nil
	}
	cached, err := session.NewCachedRecords(records, CacheWindow)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cached.Close)
	return cached, nil
}

// Handler serves the API with the engine selected by API_ENGINE.
func (a *App) Handler() http.Handler {
	if a.Config.HTTP.Engine == config.EngineGin {
		return a.GinHandler()
	}
	return a.RouterHandler()
}

// RouterHandler routes every endpoint through the filter, except metrics.
// Unknown routes go to the upstream application when one is configured.
func (a *App) RouterHandler() http.Handler {
	router := a.routes()
	if a.upstream != nil {
		router.NotFound = upstream.Handler(a.upstream)
		router.HandleMethodNotAllowed = false
	}
	protected := authapi.NewRealm(a.Filter).Protect(router)

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, a.metrics())
	mux.Handle("/", protected)
	return mux
}

// GinHandler serves the same routes from a gin engine, with the filter
// running as gin middleware.
func (a *App) GinHandler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(MetricsPath, gin.WrapH(a.metrics()))

	filter := ginauth.Middleware(a.Filter)
	engine.Any("/api/*path", filter, gin.WrapH(a.routes()))

	var fallback http.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpserver.StatusError(w, http.StatusNotFound)
	})
	if a.upstream != nil {
		fallback = upstream.Handler(a.upstream)
	}
	engine.NoRoute(filter, gin.WrapH(fallback))
	return engine
}

func (a *App) routes() *httprouter.Router {
	router := httprouter.New()
	allowHTTPCookie := !a.Config.Session.CookieSecure
	authapi.NewViews(a.Strategy, a.DB, a.Accounts.Hasher(), allowHTTPCookie).Mount(router)
	accountapi.Mount(router, a.Accounts)
	return router
}

func (a *App) metrics() http.Handler {
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
