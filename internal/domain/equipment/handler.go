package equipment

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

// Handler handles equipment HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CreateEquipmentRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Category      string `json:"category" validate:"required,max=100"`
	Description   string `json:"description"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,max=2048"`
	Location      string `json:"location" validate:"max=200"`
	SerialNumber  string `json:"serialNumber" validate:"max=120"`
	Condition     string `json:"condition" validate:"max=60"`
	TotalQuantity int    `json:"totalQuantity" validate:"gte=0"`
	Status        string `json:"status" validate:"omitempty,oneof=AVAILABLE BORROWED MAINTENANCE RETIRED"`
}

type UpdateEquipmentRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Category      *string `json:"category" validate:"omitempty,max=100"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,max=2048"`
	Location      *string `json:"location" validate:"omitempty,max=200"`
	SerialNumber  *string `json:"serialNumber" validate:"omitempty,max=120"`
	Condition     *string `json:"condition" validate:"omitempty,max=60"`
	TotalQuantity *int    `json:"totalQuantity" validate:"omitempty,gte=0"`
	Status        *string `json:"status" validate:"omitempty,oneof=AVAILABLE BORROWED MAINTENANCE RETIRED"`
}

func (r UpdateEquipmentRequest) patch() domain.EquipmentPatch {
	p := domain.EquipmentPatch{
		Name:          r.Name,
		Category:      r.Category,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		Location:      r.Location,
		SerialNumber:  r.SerialNumber,
		Condition:     r.Condition,
		TotalQuantity: r.TotalQuantity,
	}
	if r.Status != nil {
		st := domain.EquipmentStatus(*r.Status)
		p.Status = &st
	}
	return p
}

type EquipmentListResponse struct {
	Items []domain.Equipment `json:"items"`
	Total int64              `json:"total"`
	utils.Page
}

// List handles GET /api/equipment
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Param category query string false "Category"
// @Param status query string false "Status" Enums(AVAILABLE, BORROWED, MAINTENANCE, RETIRED)
// @Param q query string false "Search name, description or serial"
// @Param available query bool false "Only items with units available"
// @Success 200 {object} response.Response{data=EquipmentListResponse}
// @Router /equipment [get]
func (h *Handler) List(c *gin.Context) {
	page := utils.ParsePage(c)
	available, ok := utils.QueryBool(c, "available")
	if !ok {
		return
	}
	f := repository.EquipmentFilter{
		Category:      strings.TrimSpace(c.Query("category")),
		Status:        domain.EquipmentStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Query:         c.Query("q"),
		AvailableOnly: available,
	}

	items, total, err := h.service.List(c.Request.Context(), f, page.Limit, page.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, EquipmentListResponse{Items: items, Total: total, Page: page})
}

// Get handles GET /api/equipment/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	e, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Create handles POST /api/equipment
// @Summary Create equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEquipmentRequest true "Equipment"
// @Success 201 {object} response.Response{data=domain.Equipment}
// @Failure 409 {object} response.Response
// @Router /equipment [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), &domain.Equipment{
		Name:          req.Name,
		Category:      req.Category,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Location:      req.Location,
		SerialNumber:  req.SerialNumber,
		Condition:     req.Condition,
		TotalQuantity: req.TotalQuantity,
		Status:        domain.EquipmentStatus(req.Status),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// Update handles PUT /api/equipment/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	var req UpdateEquipmentRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), middleware.CurrentActor(c), id, req.patch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /api/equipment/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
