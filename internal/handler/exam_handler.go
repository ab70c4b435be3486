package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
	"github.com/stemsi/klausurgen/internal/validator"
)

// ExamHandler handles exam configuration endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

func examID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("exam_id"), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// ListExams godoc
// GET /api/v1/exams
// Lists saved exams, most recently edited first.
func (h *ExamHandler) ListExams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	exams, pagination, err := h.examService.List(c.Request.Context(), page, perPage)
	if err != nil {
		failWith(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// CreateExam godoc
// POST /api/v1/exams
// Saves a new exam configuration.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.ExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/exams/:exam_id
// Replaces the question selection, page breaks and metadata of an exam.
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.ExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// GetSummary godoc
// GET /api/v1/exams/:exam_id/summary
// Returns points, estimated time, page count and output filename before generating.
func (h *ExamHandler) GetSummary(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	summary, err := h.examService.Summary(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}
