package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/compiler"
	"github.com/stemsi/klausurgen/internal/model"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionService adds questions to the pool.
type QuestionService struct {
	questions QuestionStore
	writer    QuestionWriter
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, writer QuestionWriter, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		writer:    writer,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Create checks the markup of body and solution and stores a new question.
func (s *QuestionService) Create(ctx context.Context, req *model.QuestionRequest) (*model.Question, error) {
	q := req.ToQuestion()
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}
	if q.Demand == "" {
		q.Demand = model.DemandII
	}
	if err := ValidateFragment(q.Body); err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	if err := ValidateFragment(q.Solution); err != nil {
		return nil, fmt.Errorf("solution: %w", err)
	}

	if err := s.writer.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.log.Info().Int64("question_id", q.ID).Str("subject", q.Subject).Msg("Question created")
	return q, nil
}

// Get returns one pool question.
func (s *QuestionService) Get(ctx context.Context, id int64) (*model.Question, error) {
	found, err := s.questions.GetByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	q, ok := found[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return &q, nil
}

// ValidateFragment runs the document structure check on a markup fragment
// as it would appear inside the document body. Empty fragments pass.
func ValidateFragment(markup string) error {
	if markup == "" {
		return nil
	}
	return compiler.Validate("\\documentclass{article}\n\\begin{document}\n" + markup + "\n\\end{document}\n")
}
