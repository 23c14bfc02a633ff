package server

import (
	"fmt"
	"net/http"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/handlers"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"

	"github.com/The127/ioc"

	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func Serve(dp *ioc.DependencyProvider, serverConfig config.ServerConfig) {
	r := newRouter(dp, serverConfig)

	addr := fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port)
	logging.Logger.Infof("running server at %s", addr)
	srv := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	go serve(srv)
}

func newRouter(dp *ioc.DependencyProvider, serverConfig config.ServerConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(middlewares.RecoverMiddleware())
	r.Use(middlewares.LoggingMiddleware())
	r.Use(middlewares.ScopeMiddleware(dp))

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/debug/vars", handlers.ExpvarVars).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/metrics", handlers.PrometheusMetrics).Methods(http.MethodGet, http.MethodOptions)

	// Tenant scoped surface. The tenant is resolved from the Host
	// header, not from the path, so these routes sit at the root.
	tenantRouter := r.PathPrefix("/").Subrouter()
	tenantRouter.Use(middlewares.TenantMiddleware())
	tenantRouter.Use(middlewares.SessionMiddleware())

	tenantRouter.HandleFunc("/.well-known/jwks.json", handlers.WellKnownJwks).Methods(http.MethodGet, http.MethodOptions)
	tenantRouter.HandleFunc("/auth/logout", handlers.Logout).Methods(http.MethodGet, http.MethodOptions)

	// The limiter runs before the tenant and session middlewares so a
	// denied request costs no tenant lookup and no session read.
	rateLimiter := ioc.GetDependency[middlewares.RateLimiter](dp)
	flowRouter := r.PathPrefix("/auth").Subrouter()
	flowRouter.Use(middlewares.RateLimitMiddleware(rateLimiter))
	flowRouter.Use(middlewares.TenantMiddleware())
	flowRouter.Use(middlewares.SessionMiddleware())
	flowRouter.HandleFunc("/login", handlers.BeginLoginFlow).Methods(http.MethodGet, http.MethodOptions)
	flowRouter.HandleFunc("/callback", handlers.AuthCallback).Methods(http.MethodGet, http.MethodOptions)

	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.Use(gh.CORS(
		gh.AllowedOrigins(serverConfig.AllowedOrigins),
		gh.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH"}),
		gh.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gh.AllowCredentials(),
		gh.MaxAge(3600),
	))

	apiRouter.HandleFunc("/organizations", handlers.CreateOrganization).Methods(http.MethodPost, http.MethodOptions)

	apiRouter.HandleFunc("/tenants", handlers.CreateTenant).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/tenants", handlers.ListTenants).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/tenants/{tenantId}", handlers.GetTenant).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/tenants/{tenantId}/rotate-key", handlers.RotateTenantKey).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/tenants/{tenantId}/deactivate", handlers.DeactivateTenant).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func serve(srv *http.Server) {
	err := srv.ListenAndServe()
	if err != nil {
		panic(fmt.Errorf("error while running server: %w", err))
	}
}
