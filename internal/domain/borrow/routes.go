package borrow

import (
	"equiplend/internal/access"
	"equiplend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers borrow routes. Return requests and the manage
// endpoint are authorized per request in the service, since ownership and
// the chosen action decide who may call them.
func RegisterRoutes(public *gin.RouterGroup, protected *gin.RouterGroup, handler *Handler) {
	public.GET("/borrow/public", handler.Public)

	protected.GET("/activity", handler.Activity)

	borrow := protected.Group("/borrow")
	{
		borrow.GET("", handler.List)
		borrow.POST("", middleware.RequireOperation(access.OpCreateRequest), handler.Create)
		borrow.POST("/manage", handler.Manage)
		borrow.GET("/:id", handler.Get)
		borrow.POST("/:id/approve", middleware.RequireOperation(access.OpApproveRequest), handler.Approve)
		borrow.POST("/:id/reject", middleware.RequireOperation(access.OpRejectRequest), handler.Reject)
		borrow.POST("/:id/return", handler.RequestReturn)
		borrow.POST("/:id/confirm-return", middleware.RequireOperation(access.OpConfirmReturn), handler.ConfirmReturn)
	}
}
