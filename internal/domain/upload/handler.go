package upload

import (
	"net/http"

	"equiplend/internal/middleware"
	"equiplend/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler handles image uploads for the equipment catalog.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload godoc
// @Summary Upload an equipment image
// @Description Admin only. jpeg, png, webp or gif up to 5MB. Returns the public URL.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image to upload"
// @Success 201 {object} response.Response{data=Result}
// @Failure 400,401,403,502 {object} response.Response
// @Router /upload-image [post]
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxFileSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, ErrNoFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	res, err := h.service.Upload(c.Request.Context(), middleware.CurrentActor(c), file, fileHeader.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}
