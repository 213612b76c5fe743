package borrow

import (
	"strings"
	"time"

	"equiplend/internal/domain"
	"equiplend/internal/middleware"
	"equiplend/internal/pkg/apperr"
	"equiplend/internal/pkg/response"
	"equiplend/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handler handles borrow request HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CreateBorrowRequest struct {
	EquipmentID int64  `json:"equipmentId" validate:"required,gt=0"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
	Purpose     string `json:"purpose" validate:"max=500"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
	Notes       string `json:"notes" validate:"max=1000"`
}

type ManageBorrowRequest struct {
	RequestID       int64  `json:"requestId" validate:"required,gt=0"`
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

type RejectBorrowRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type BorrowListResponse struct {
	Items []domain.BorrowView `json:"items"`
	Total int64               `json:"total"`
	utils.Page
}

// dateLayouts are accepted for startDate and endDate.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("%s must be RFC3339 or YYYY-MM-DD", field)
}

func queryStatus(c *gin.Context) domain.BorrowStatus {
	return domain.BorrowStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
}

// Create handles POST /api/borrow
// @Summary Request equipment
// @Tags Borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBorrowRequest true "Borrow request"
// @Success 201 {object} response.Response{data=domain.BorrowView}
// @Failure 409 {object} response.Response
// @Router /borrow [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBorrowRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	v, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), CreateInput{
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		Purpose:     req.Purpose,
		StartDate:   start,
		EndDate:     end,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, v)
}

// List handles GET /api/borrow
// @Summary List my borrow requests
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Param myOnly query bool false "Only the caller's requests, for admins"
// @Param status query string false "Status"
// @Success 200 {object} response.Response{data=BorrowListResponse}
// @Router /borrow [get]
func (h *Handler) List(c *gin.Context) {
	page := utils.ParsePage(c)
	myOnly, ok := utils.QueryBool(c, "myOnly")
	if !ok {
		return
	}

	items, total, err := h.service.ListMine(c.Request.Context(), middleware.CurrentActor(c),
		ListFilter{MyOnly: myOnly, Status: queryStatus(c)}, page.Limit, page.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, BorrowListResponse{Items: items, Total: total, Page: page})
}

// Get handles GET /api/borrow/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// Manage handles POST /api/borrow/manage
// @Summary Approve or reject a request
// @Tags Borrow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ManageBorrowRequest true "Action"
// @Success 200 {object} response.Response{data=domain.BorrowView}
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrow/manage [post]
func (h *Handler) Manage(c *gin.Context) {
	var req ManageBorrowRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	v, err := h.service.Manage(c.Request.Context(), middleware.CurrentActor(c), req.RequestID, req.Action, req.RejectionReason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// Approve handles POST /api/borrow/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.Approve(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// Reject handles POST /api/borrow/:id/reject. The body is optional.
func (h *Handler) Reject(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	var req RejectBorrowRequest
	if c.Request.ContentLength != 0 && !utils.BindJSON(c, &req) {
		return
	}
	v, err := h.service.Reject(c.Request.Context(), middleware.CurrentActor(c), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// RequestReturn handles POST /api/borrow/:id/return
func (h *Handler) RequestReturn(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.RequestReturn(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// ConfirmReturn handles POST /api/borrow/:id/confirm-return
func (h *Handler) ConfirmReturn(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.ConfirmReturn(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// Activity handles GET /api/activity
// @Summary Full activity feed
// @Tags Borrow
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Success 200 {object} response.Response{data=BorrowListResponse}
// @Router /activity [get]
func (h *Handler) Activity(c *gin.Context) {
	page := utils.ParsePage(c)
	items, total, err := h.service.Activity(c.Request.Context(), queryStatus(c), page.Limit, page.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, BorrowListResponse{Items: items, Total: total, Page: page})
}

// Public handles GET /api/borrow/public
// @Summary Public borrow feed
// @Description Approved, active and returned requests with identities redacted.
// @Tags Borrow
// @Produce json
// @Success 200 {object} response.Response{data=BorrowListResponse}
// @Router /borrow/public [get]
func (h *Handler) Public(c *gin.Context) {
	page := utils.ParsePage(c)
	items, total, err := h.service.Public(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, BorrowListResponse{Items: items, Total: total, Page: page})
}
