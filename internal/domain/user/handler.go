package user

import (
	"net/http"
	"strings"

	"equiplend/internal/domain"
	"equiplend/internal/middleware"
	"equiplend/internal/pkg/response"
	"equiplend/internal/pkg/utils"
	"equiplend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Handler handles user HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type UpdateRoleRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required,oneof=USER MODERATOR ADMIN"`
}

type UserListResponse struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
	utils.Page
}

// Provision handles POST /api/user
// @Summary Provision the current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.User}
// @Router /user [post]
func (h *Handler) Provision(c *gin.Context) {
	h.current(c)
}

// GetCurrent handles GET /api/get-user
func (h *Handler) GetCurrent(c *gin.Context) {
	h.current(c)
}

func (h *Handler) current(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// UpdateRole handles POST /api/admin/update-role
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateRoleRequest true "Target user and role"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/update-role [post]
func (h *Handler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	u, err := h.service.UpdateRole(c.Request.Context(), middleware.CurrentActor(c), req.UserID, domain.UserRole(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// List handles GET /api/admin/users
func (h *Handler) List(c *gin.Context) {
	page := utils.ParsePage(c)
	filter := repository.UserListFilter{
		Role:  domain.UserRole(strings.ToUpper(strings.TrimSpace(c.Query("role")))),
		Query: c.Query("q"),
	}

	users, total, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c), filter, page.Limit, page.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, UserListResponse{Users: users, Total: total, Page: page})
}
