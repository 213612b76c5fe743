package stats

import (
	"equiplend/internal/middleware"
	"equiplend/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /api/statistics
// @Summary Borrow statistics
// @Description Admins get every request; other callers get their own.
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=Statistics}
// @Router /statistics [get]
func (h *Handler) Get(c *gin.Context) {
	out, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}
