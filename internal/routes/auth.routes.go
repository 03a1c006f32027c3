package routes

import (
	"diskpanel/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the token-authenticated WebSocket endpoint
func RegisterAuthRoutes(r *gin.Engine, wc *controllers.WebSocketController) {
	// Table sort sessions for rendered pages
	r.GET("/ws", wc.HandleWebSocket)
}
