package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/api/handlers"
	"github.com/opencollective/frontend/internal/api/middleware"
	"github.com/opencollective/frontend/internal/config"
	"github.com/opencollective/frontend/internal/metrics"
	"github.com/opencollective/frontend/internal/page"
	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/internal/static"
	"github.com/opencollective/frontend/internal/storage"
	"github.com/opencollective/frontend/internal/view"
)

// Services are the collaborators the router wires together
type Services struct {
	Backends  middleware.BackendFactory
	Visitors  storage.Provider
	Pages     *routes.Table
	Assets    *routes.Table
	Registry  *page.Registry
	Renderer  *view.Renderer
	Responder *static.Responder
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := page.RegisterValidations(v); err != nil {
			return nil, fmt.Errorf("failed to register form validations: %w", err)
		}
	}

	if svc.Pages == nil {
		svc.Pages = routes.Pages()
	}
	if svc.Assets == nil {
		svc.Assets = routes.Assets()
	}
	if svc.Registry == nil {
		svc.Registry = page.NewRegistry()
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(logger))
	if svc.Metrics != nil {
		router.Use(svc.Metrics.Middleware())
	}

	// Health check
	router.GET("/health", handlers.HandleHealth())
	if svc.Metrics != nil && svc.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(svc.Gatherer)))
	}
	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
	}

	pages := &handlers.PageHandler{
		Registry:              svc.Registry,
		Routes:                svc.Pages,
		Assets:                svc.Assets,
		Renderer:              svc.Renderer,
		Metrics:               svc.Metrics,
		Guard:                 page.NewInstanceGuard(),
		Backend:               svc.Backends(""),
		Host:                  cfg.WebsiteURL,
		DefaultCollectiveSlug: cfg.Pages.DefaultCollectiveSlug,
		Logger:                logger,
	}
	assets := &handlers.AssetHandler{Responder: svc.Responder}

	// Everything else goes through the route tables
	router.NoRoute(
		middleware.Session(svc.Backends, logger),
		middleware.VisitorState(svc.Visitors, logger),
		handlers.HandleDispatch(svc.Assets, svc.Pages, assets, pages),
	)

	return router, nil
}
