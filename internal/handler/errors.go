package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
)

// statusFor maps an API error code to its HTTP status.
func statusFor(code response.ErrCode) int {
	switch code {
	case response.ErrExamNotFound, response.ErrJobNotFound, response.ErrNotFound,
		response.ErrQuestionNotFound, response.ErrSchoolNotFound:
		return http.StatusNotFound
	case response.ErrValidation, response.ErrInvalidID, response.ErrInvalidPayload,
		response.ErrFileRequired, response.ErrUnsupportedFile:
		return http.StatusBadRequest
	case response.ErrFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case response.ErrUnknownQuestion, response.ErrPageBreakRange, response.ErrNoOutputSelected,
		response.ErrEmptyQuestionSet, response.ErrEmptyRoster, response.ErrMarkupUnbalanced:
		return http.StatusUnprocessableEntity
	case response.ErrJobAlreadyRunning, response.ErrJobNotFinished:
		return http.StatusConflict
	case response.ErrCompileTimeout:
		return http.StatusGatewayTimeout
	case response.ErrCompileRejected, response.ErrCompileNetwork, response.ErrCompileEmpty:
		return http.StatusBadGateway
	case response.ErrStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// failWith sends the error response matching err.
func failWith(c *gin.Context, err error) {
	code := service.ErrorCode(err)
	if code == response.ErrInternal {
		_ = c.Error(err)
	}
	response.Fail(c, statusFor(code), code)
}
