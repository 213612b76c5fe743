package equipment

import (
	"equiplend/internal/access"
	"equiplend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers equipment routes. Reads are public, writes need
// an authenticated admin.
func RegisterRoutes(public *gin.RouterGroup, protected *gin.RouterGroup, handler *Handler) {
	public.GET("/equipment", handler.List)
	public.GET("/equipment/:id", handler.Get)

	manage := protected.Group("/equipment", middleware.RequireOperation(access.OpManageEquipment))
	{
		manage.POST("", handler.Create)
		manage.PUT("/:id", handler.Update)
		manage.DELETE("/:id", handler.Delete)
	}
}
