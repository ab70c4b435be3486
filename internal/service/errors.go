package service

import (
	"errors"

	"github.com/stemsi/klausurgen/internal/allocator"
	"github.com/stemsi/klausurgen/internal/compiler"
	"github.com/stemsi/klausurgen/internal/latex"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/storage"
)

// ErrorCode classifies err for API clients and job status.
func ErrorCode(err error) response.ErrCode {
	switch {
	case errors.Is(err, ErrExamNotFound):
		return response.ErrExamNotFound
	case errors.Is(err, ErrUnknownQuestion):
		return response.ErrUnknownQuestion
	case errors.Is(err, model.ErrPageBreakOutOfRange):
		return response.ErrPageBreakRange
	case errors.Is(err, ErrQuestionNotFound):
		return response.ErrQuestionNotFound
	case errors.Is(err, ErrSchoolNotFound):
		return response.ErrSchoolNotFound
	case errors.Is(err, ErrUnsupportedFileType):
		return response.ErrUnsupportedFile
	case errors.Is(err, ErrFileTooLarge):
		return response.ErrFileTooLarge
	case errors.Is(err, ErrInvalidGraphicName):
		return response.ErrInvalidPayload
	case errors.Is(err, ErrNoOutputSelected):
		return response.ErrNoOutputSelected
	case errors.Is(err, latex.ErrEmptyQuestionSet):
		return response.ErrEmptyQuestionSet
	case errors.Is(err, latex.ErrEmptyRoster):
		return response.ErrEmptyRoster
	case errors.Is(err, allocator.ErrStorageUnavailable):
		return response.ErrStorageFailure
	case errors.Is(err, compiler.ErrUnbalanced):
		return response.ErrMarkupUnbalanced
	case errors.Is(err, compiler.ErrCompileTimeout):
		return response.ErrCompileTimeout
	case errors.Is(err, compiler.ErrCompileRejected):
		return response.ErrCompileRejected
	case errors.Is(err, compiler.ErrNetwork):
		return response.ErrCompileNetwork
	case errors.Is(err, compiler.ErrEmptyResponse):
		return response.ErrCompileEmpty
	case errors.Is(err, ErrJobNotFound):
		return response.ErrJobNotFound
	case errors.Is(err, ErrJobAlreadyRunning):
		return response.ErrJobAlreadyRunning
	case errors.Is(err, storage.ErrNotFound):
		return response.ErrNotFound
	default:
		return response.ErrInternal
	}
}
