package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
	"github.com/stemsi/klausurgen/internal/validator"
)

// PoolHandler serves the question pool and class rosters.
type PoolHandler struct {
	poolService *service.PoolService
}

// NewPoolHandler creates a new PoolHandler.
func NewPoolHandler(poolService *service.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

// ListQuestions godoc
// GET /api/v1/questions?subject=&grade=&difficulty=&demand=&q=
func (h *PoolHandler) ListQuestions(c *gin.Context) {
	var filter model.QuestionFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.poolService.Questions(c.Request.Context(), filter)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListStudents godoc
// GET /api/v1/students?school_year=&school=&class=
func (h *PoolHandler) ListStudents(c *gin.Context) {
	var q model.RosterQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	students, err := h.poolService.Students(c.Request.Context(), q)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

type classQuery struct {
	SchoolYear string `form:"school_year" binding:"required,schoolyear"`
	School     string `form:"school" binding:"required"`
}

// ListClasses godoc
// GET /api/v1/classes?school_year=&school=
func (h *PoolHandler) ListClasses(c *gin.Context) {
	var q classQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classes, err := h.poolService.Classes(c.Request.Context(), q.SchoolYear, q.School)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}
