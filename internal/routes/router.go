package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"diskpanel/internal/config"
	"diskpanel/internal/controllers"
	"diskpanel/internal/middleware"
	"diskpanel/internal/services"
	"diskpanel/internal/views"
)

// Server bundles the router with the state that outlives single requests
type Server struct {
	Engine   *gin.Engine
	Pipeline *services.Pipeline
	Hub      *services.SessionHub
	Metrics  *services.PipelineMetrics
}

// NewServer wires the pipeline, controllers and middleware. capability may
// be nil to always serve the sample data set.
func NewServer(cfg *config.Config, capability services.QueryCapability, registry *prometheus.Registry) (*Server, error) {
	metrics, err := services.NewPipelineMetrics(registry)
	if err != nil {
		return nil, err
	}

	auth, err := services.NewAuthService(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return nil, err
	}

	store := services.NewSnapshotStore(cfg.Session.TTL)
	source := services.NewDataSource(capability, cfg.DataSource.Timeout, metrics)
	pipeline := services.NewPipeline(source, store)
	hub := services.NewSessionHub(metrics)

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.IPWhitelistMiddleware(middleware.NewIPWhitelist(cfg.Server.AllowedIPs)))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)))

	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(views.Static()))

	RegisterDashboardRoutes(r, controllers.NewDashboardController(pipeline, auth, metrics))
	RegisterVolumeRoutes(r, controllers.NewVolumesController(pipeline, metrics))
	RegisterAuthRoutes(r, controllers.NewWebSocketController(store, auth, hub, metrics))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		Engine:   r,
		Pipeline: pipeline,
		Hub:      hub,
		Metrics:  metrics,
	}, nil
}
