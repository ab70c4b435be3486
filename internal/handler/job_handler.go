package handler

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
	"github.com/stemsi/klausurgen/internal/storage"
	"github.com/stemsi/klausurgen/internal/validator"
)

// JobHandler starts generation runs and serves their results.
type JobHandler struct {
	examService *service.ExamService
	jobService  *service.JobService
	store       storage.Store
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(examService *service.ExamService, jobService *service.JobService, store storage.Store) *JobHandler {
	return &JobHandler{
		examService: examService,
		jobService:  jobService,
		store:       store,
	}
}

func jobID(c *gin.Context) (string, bool) {
	id := c.Param("job_id")
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id, true
}

// Generate godoc
// POST /api/v1/exams/:exam_id/generate
// Queues a generation run. The optional body overrides the stored output options.
func (h *JobHandler) Generate(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.GenerateRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	exam, err := h.examService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}
	opts := exam.Options
	if req.Options != nil {
		opts = *req.Options
	}
	if !opts.Any() {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoOutputSelected)
		return
	}

	job, err := h.jobService.Enqueue(c.Request.Context(), id, req.Options)
	if err != nil {
		failWith(c, err)
		return
	}

	c.Header("Location", "/api/v1/jobs/"+job.ID)
	response.Success(c, http.StatusAccepted, gin.H{"job": job})
}

// GetJob godoc
// GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"job": job})
}

// Download godoc
// GET /api/v1/jobs/:job_id/download
// Streams the finished <stem>_Komplett.pdf.
func (h *JobHandler) Download(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}
	if job.State != model.JobStateDone || job.Location == "" {
		response.Fail(c, http.StatusConflict, response.ErrJobNotFinished)
		return
	}

	rc, err := h.store.Get(job.Location)
	if err != nil {
		failWith(c, err)
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		failWith(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": job.Filename}))
	c.Data(http.StatusOK, "application/pdf", data)
}
