package user

import (
	"equiplend/internal/access"
	"equiplend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers user routes on an authenticated group
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/user", handler.Provision)
	r.GET("/get-user", handler.GetCurrent)

	admin := r.Group("/admin")
	{
		admin.POST("/update-role", middleware.RequireOperation(access.OpUpdateRole), handler.UpdateRole)
		admin.GET("/users", middleware.RequireOperation(access.OpListUsers), handler.List)
	}
}
