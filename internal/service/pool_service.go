package service

import (
	"context"

	"github.com/stemsi/klausurgen/internal/model"
)

// PoolService exposes the read-only question pool and class rosters.
type PoolService struct {
	questions QuestionStore
	students  StudentStore
}

// NewPoolService creates a new PoolService.
func NewPoolService(questions QuestionStore, students StudentStore) *PoolService {
	return &PoolService{questions: questions, students: students}
}

// Questions lists pool questions matching filter.
func (s *PoolService) Questions(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	return s.questions.List(ctx, filter)
}

// Students returns the roster of one class.
func (s *PoolService) Students(ctx context.Context, q model.RosterQuery) ([]model.Student, error) {
	return s.students.ListByClass(ctx, q)
}

// Classes lists the classes of a school in a school year.
func (s *PoolService) Classes(ctx context.Context, schoolYear, school string) ([]string, error) {
	return s.students.ListClasses(ctx, schoolYear, school)
}
