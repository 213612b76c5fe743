package stats

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.GET("/statistics", handler.Get)
}
