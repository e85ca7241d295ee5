// Package httpapi serves the authentication API over HTTP: login, refresh
// and logout, a client-bound "me" endpoint, and the admin device surface.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/logging"
	"github.com/dmitrijs2005/sidhilynx/internal/server/metrics"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Authenticator is the subset of services.Authenticator the handlers use.
type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Refresh(ctx context.Context, req services.RefreshRequest) (*services.RefreshResult, error)
	Logout(ctx context.Context, req services.RefreshRequest) error
	VerifyAccess(ctx context.Context, bearer string, p services.ClientProof, path string) (*services.Principal, error)
}

// ClientRegistry backs the admin routes.
type ClientRegistry interface {
	List(ctx context.Context, userID string) ([]*models.Client, error)
	Revoke(ctx context.Context, clientID string) error
}

// Options configures NewRouter. An empty AdminAPIKey disables the admin
// routes; a non-positive RateLimitPerMinute disables rate limiting.
type Options struct {
	Auth               Authenticator
	Registry           ClientRegistry
	Metrics            *metrics.Metrics
	Logger             logging.Logger
	AdminAPIKey        string
	CORSOrigins        []string
	RateLimitPerMinute int
	TrustProxy         bool
}

type api struct {
	auth       Authenticator
	registry   ClientRegistry
	metrics    *metrics.Metrics
	logger     logging.Logger
	adminKey   string
	trustProxy bool
}

// NewRouter builds the chi router with every route mounted and wraps it
// for tracing.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	a := &api{
		auth:       opts.Auth,
		registry:   opts.Registry,
		metrics:    opts.Metrics,
		logger:     opts.Logger.With("module", "http_api"),
		adminKey:   opts.AdminAPIKey,
		trustProxy: opts.TrustProxy,
	}

	allowed := opts.CORSOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.HTTPMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			common.HeaderClientPublicKey, common.HeaderClientSignature, common.HeaderClientTimestamp,
			common.HeaderPlatform, common.HeaderAppID, common.HeaderAppName, common.HeaderAppVersion,
			common.HeaderAppIDAlias, common.HeaderAppNameAlias, common.HeaderAppVersionAlias,
		},
		MaxAge: int((10 * time.Minute).Seconds()),
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(opts.RateLimitPerMinute, time.Minute,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					return clientIP(r, a.trustProxy), nil
				}),
			))
		}
		r.Post("/login", a.handleLogin)
		r.Post("/refresh-token", a.handleRefresh)
		r.Post("/logout", a.handleLogout)
		r.With(a.clientBound).Get("/me", a.handleMe)
	})

	if a.adminKey != "" {
		r.Route("/admin/clients", func(r chi.Router) {
			r.Use(a.requireAdminKey)
			r.Get("/", a.handleListClients)
			r.Post("/revoke/{client_id}", a.handleRevokeClient)
		})
	}

	return otelhttp.NewHandler(r, "sidhilynx.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
