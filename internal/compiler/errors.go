package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrUnbalanced      = errors.New("latex structure is unbalanced")
	ErrCompileTimeout  = errors.New("latex compile timed out")
	ErrCompileRejected = errors.New("latex compile rejected")
	ErrNetwork         = errors.New("latex service unreachable")
	ErrEmptyResponse   = errors.New("latex service returned no PDF")
)

// StructureError is returned by Validate before anything is sent.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "invalid latex: " + e.Reason
}

func (e *StructureError) Is(target error) bool {
	return target == ErrUnbalanced
}

// RejectedError carries the service's diagnostic output.
type RejectedError struct {
	Status     int
	Diagnostic string
}

func (e *RejectedError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("latex compile rejected (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("latex compile rejected (HTTP %d): %s", e.Status, e.Diagnostic)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrCompileRejected
}
