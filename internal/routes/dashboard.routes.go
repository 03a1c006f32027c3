package routes

import (
	"diskpanel/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterDashboardRoutes(r *gin.Engine, dc *controllers.DashboardController) {
	r.GET("/", dc.ShowDashboard)
}
