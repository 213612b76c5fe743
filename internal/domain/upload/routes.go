package upload

import (
	"equiplend/internal/access"
	"equiplend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers upload routes on an authenticated group
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/upload-image", middleware.RequireOperation(access.OpUploadImage), handler.Upload)
}
