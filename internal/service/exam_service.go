package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/latex"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/repository"
	"github.com/stemsi/klausurgen/internal/response"
)

// Domain Errors
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrUnknownQuestion = errors.New("exam references an unknown question")
)

// ExamService stores exam configurations and resolves them into the
// aggregate the generation pipeline works on.
type ExamService struct {
	exams     ExamStore
	questions QuestionStore
	students  StudentStore
	schools   SchoolStore
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	exams ExamStore,
	questions QuestionStore,
	students StudentStore,
	schools SchoolStore,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		students:  students,
		schools:   schools,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create validates and stores a new exam.
func (s *ExamService) Create(ctx context.Context, req *model.ExamRequest) (*model.ExamRecord, error) {
	rec := req.ToRecord()
	if err := s.prepare(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.exams.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().Int64("exam_id", rec.ID).Int("questions", len(rec.Slots)).Msg("Exam created")
	return rec, nil
}

// Update replaces the stored configuration of exam id.
func (s *ExamService) Update(ctx context.Context, id int64, req *model.ExamRequest) (*model.ExamRecord, error) {
	rec := req.ToRecord()
	rec.ID = id
	if err := s.prepare(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.exams.Update(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("update exam: %w", err)
	}

	s.log.Info().Int64("exam_id", rec.ID).Msg("Exam updated")
	return rec, nil
}

// prepare checks the question selection and page breaks and fills in the point total.
func (s *ExamService) prepare(ctx context.Context, rec *model.ExamRecord) error {
	ids := make([]int64, len(rec.Slots))
	for i, ref := range rec.Slots {
		ids[i] = ref.QuestionID
	}
	found, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	active, total := 0, 0
	for _, ref := range rec.Slots {
		q, ok := found[ref.QuestionID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownQuestion, ref.QuestionID)
		}
		if ref.Active {
			active++
			total += q.Points
		}
	}
	for _, b := range rec.PageBreaks {
		if b < 0 || b >= active {
			return fmt.Errorf("%w: %d (active questions: %d)", model.ErrPageBreakOutOfRange, b, active)
		}
	}
	// Stored breaks must match what the exam applies: one per index, ascending.
	if len(rec.PageBreaks) > 1 {
		rec.PageBreaks = slices.Compact(slices.Sorted(slices.Values(rec.PageBreaks)))
	}

	rec.TotalPoints = total
	return nil
}

// Get returns the stored configuration of exam id.
func (s *ExamService) Get(ctx context.Context, id int64) (*model.ExamRecord, error) {
	rec, err := s.exams.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	return rec, err
}

// List retrieves saved exams, most recently edited first.
func (s *ExamService) List(ctx context.Context, page, perPage int) ([]model.ExamRecord, *response.Pagination, error) {
	p := response.NewPagination(page, perPage, 0)

	exams, total, err := s.exams.ListRecent(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.ExamRecord{}
	}

	return exams, response.NewPagination(p.Page, p.PerPage, total), nil
}

// Resolve loads exam id with its questions, school and class roster.
func (s *ExamService) Resolve(ctx context.Context, id int64) (*model.Exam, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rec.Slots))
	for i, ref := range rec.Slots {
		ids[i] = ref.QuestionID
	}
	found, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	exam := &model.Exam{
		ID:              rec.ID,
		SchoolCode:      rec.SchoolCode,
		Subject:         rec.Subject,
		SubjectCode:     rec.SubjectCode,
		GradeLevel:      rec.GradeLevel,
		Class:           rec.Class,
		Type:            rec.Type,
		Number:          rec.Number,
		Date:            rec.Date,
		DurationMinutes: rec.DurationMinutes,
		Topic:           rec.Topic,
		SchoolYear:      rec.SchoolYear,
		Options:         rec.Options,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		Slots:           make([]model.ExamQuestionSlot, 0, len(rec.Slots)),
	}
	for _, ref := range rec.Slots {
		q, ok := found[ref.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, ref.QuestionID)
		}
		exam.Slots = append(exam.Slots, model.ExamQuestionSlot{Question: q, Active: ref.Active, Page: ref.Page})
	}
	exam.Renumber()
	if err := exam.SetPageBreaks(rec.PageBreaks); err != nil {
		return nil, err
	}

	school, err := s.schools.GetByCode(ctx, rec.SchoolCode)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.Warn().Str("school", rec.SchoolCode).Msg("School not found, rendering without logo")
	case err != nil:
		return nil, fmt.Errorf("load school: %w", err)
	default:
		exam.School = school
	}

	exam.Students, err = s.students.ListByClass(ctx, model.RosterQuery{
		SchoolYear: rec.SchoolYear,
		School:     rec.SchoolCode,
		Class:      rec.Class,
	})
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	return exam, nil
}

// Summary derives the overview shown before generating exam id.
func (s *ExamService) Summary(ctx context.Context, id int64) (*model.ExamSummary, error) {
	exam, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return Summarize(exam), nil
}

// Summarize derives the pre-generation overview of a resolved exam.
func Summarize(exam *model.Exam) *model.ExamSummary {
	return &model.ExamSummary{
		ExamID:           exam.ID,
		ActiveQuestions:  exam.ActiveCount(),
		TotalPoints:      exam.TotalPoints(),
		EstimatedMinutes: exam.EstimatedMinutes(),
		Students:         exam.StudentCount(),
		PageBreaks:       exam.PageBreaks(),
		EstimatedPages:   latex.EstimatePages(exam.ActiveCount()),
		Filename:         latex.SanitizeFilename(exam.CompleteFilename()),
	}
}
