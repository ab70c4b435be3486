package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
)

// multipart framing on top of the file itself
const uploadOverhead = 64 << 10

// MediaHandler handles graphic and logo uploads.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadGraphic godoc
// POST /api/v1/questions/:question_id/graphics (multipart: file, name)
// Stores an image the question references via \includegraphics{name}.
func (h *MediaHandler) UploadGraphic(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.mediaService.MaxBytes()+uploadOverhead)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.failUpload(c, err)
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	if name == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"name": "name is required"})
		return
	}

	graphic, err := h.mediaService.SaveGraphic(c.Request.Context(), id, name, file)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"graphic": graphic, "file": graphic.FileName()})
}

// UploadLogo godoc
// PUT /api/v1/schools/:code/logo (multipart: file)
func (h *MediaHandler) UploadLogo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.mediaService.MaxBytes()+uploadOverhead)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.failUpload(c, err)
		return
	}
	defer file.Close()

	name, err := h.mediaService.SaveLogo(c.Request.Context(), c.Param("code"), file)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"school": c.Param("code"), "file": name})
}

func (h *MediaHandler) failUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}
	response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
}
