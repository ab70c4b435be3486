package service

import (
	"context"

	"github.com/stemsi/klausurgen/internal/model"
)

// ExamStore persists saved exams. Implemented by repository.ExamRepository.
type ExamStore interface {
	Create(ctx context.Context, e *model.ExamRecord) error
	Update(ctx context.Context, e *model.ExamRecord) error
	GetByID(ctx context.Context, id int64) (*model.ExamRecord, error)
	ListRecent(ctx context.Context, limit, offset int) ([]model.ExamRecord, int, error)
}

// QuestionStore reads the question pool. Implemented by repository.QuestionRepository.
type QuestionStore interface {
	List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Question, error)
}

// StudentStore reads class rosters. Implemented by repository.StudentRepository.
type StudentStore interface {
	ListByClass(ctx context.Context, q model.RosterQuery) ([]model.Student, error)
	ListClasses(ctx context.Context, schoolYear, school string) ([]string, error)
}

// SchoolStore looks up schools and their logos. Implemented by repository.SchoolRepository.
type SchoolStore interface {
	GetByCode(ctx context.Context, code string) (*model.School, error)
}

// GraphicStore loads question graphics. Implemented by repository.GraphicRepository.
type GraphicStore interface {
	ListForQuestions(ctx context.Context, questionIDs []int64) ([]model.Graphic, error)
}

// QuestionWriter adds questions to the pool. Implemented by repository.QuestionRepository.
type QuestionWriter interface {
	Create(ctx context.Context, q *model.Question) error
}

// GraphicWriter stores question graphics. Implemented by repository.GraphicRepository.
type GraphicWriter interface {
	Create(ctx context.Context, g *model.Graphic) error
}

// LogoWriter replaces school logos. Implemented by repository.SchoolRepository.
type LogoWriter interface {
	SetLogo(ctx context.Context, code string, logo []byte) error
}
