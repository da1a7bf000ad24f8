package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/infra/config"
	"github.com/top-magar/indigo-sub018/internal/transport/http/handlers"
	"github.com/top-magar/indigo-sub018/internal/transport/http/middleware"
)

// HandlerSet groups the handlers the HTTP layer exposes.
type HandlerSet struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Tenants    *handlers.TenantHandler
	Storefront *handlers.StorefrontHandler
	Dashboard  *handlers.DashboardHandler
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Admission *middleware.Admission
	Verifier  *middleware.SessionVerifier
	Metrics   *middleware.HTTPMetrics
	Handlers  HandlerSet
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware. Every
// business route passes through an admission wrapper before its handler.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	r.GET("/healthz", deps.Handlers.Health.Status)
	r.GET("/readyz", deps.Handlers.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admission := deps.Admission
	resolveHost := middleware.ResolveHost(deps.Config.Platform.RootDomain, deps.Logger)
	requireAuth := middleware.Authenticate(deps.Verifier)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/session", admission.Auth(), deps.Handlers.Auth.IssueSession)

		tenantGroup := api.Group("/tenants")
		deps.Handlers.Tenants.RegisterRoutes(tenantGroup, requireAuth, admission.Dashboard())

		storefront := api.Group("/storefront", resolveHost)
		{
			storefront.GET("/store", admission.Storefront(), deps.Handlers.Storefront.Store)
			storefront.POST("/cart/items", admission.Cart(), deps.Handlers.Storefront.AddToCart)
			storefront.POST("/checkout", admission.Checkout(), deps.Handlers.Storefront.Checkout)
		}

		dashboard := api.Group("/dashboard", requireAuth)
		deps.Handlers.Dashboard.RegisterRoutes(dashboard, admission.Dashboard(), admission.VisualEditor())
	}

	return r
}
