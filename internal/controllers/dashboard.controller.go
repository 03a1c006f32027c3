package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diskpanel/internal/logging"
	"diskpanel/internal/services"
	"diskpanel/internal/views"
)

// DashboardController renders the dashboard page. Every page load runs the
// pipeline once.
type DashboardController struct {
	pipeline *services.Pipeline
	auth     *services.AuthService
	metrics  *services.PipelineMetrics
}

func NewDashboardController(pipeline *services.Pipeline, auth *services.AuthService, metrics *services.PipelineMetrics) *DashboardController {
	return &DashboardController{pipeline: pipeline, auth: auth, metrics: metrics}
}

// ShowDashboard fetches volumes and fans them out to the page widgets
func (dc *DashboardController) ShowDashboard(c *gin.Context) {
	snap, err := dc.pipeline.Refresh(c.Request.Context())
	if err != nil {
		c.HTML(http.StatusServiceUnavailable, "error.html", gin.H{
			"Message": "Volume information is unavailable: " + err.Error(),
		})
		return
	}

	surface := views.NewHTMLSurface()
	renderers := services.DefaultRenderers(surface, views.NewChartJSCharter(surface))
	services.NewFanout(dc.metrics, renderers...).Present(snap)

	token, err := dc.auth.GenerateToken(snap.ID)
	if err != nil {
		// The page still renders; only interactive sorting is lost.
		logging.With("dashboard").Error().Err(err).Msg("Could not issue session token")
		token = ""
	}

	c.HTML(http.StatusOK, "dashboard.html", surface.Page(snap, token))
}
