package routes

import (
	"diskpanel/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterVolumeRoutes(r *gin.Engine, vc *controllers.VolumesController) {
	api := r.Group("/api")
	{
		api.GET("/volumes", vc.GetVolumes)
		api.GET("/snapshots/:id", vc.GetSnapshot)
		api.GET("/snapshots/:id/table", vc.GetSnapshotTable)
	}
}
