package activity

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the live public feed
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/borrow/public/ws", handler.Subscribe)
}
