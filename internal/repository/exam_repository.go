package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/klausurgen/internal/model"
)

const examColumns = `id, school_code, subject, subject_code, grade_level, class, type, number, date,
	duration_minutes, topic, school_year, questions_json, page_breaks_json, options_json,
	total_points, created_at, updated_at`

// ExamRepository persists saved exams. The question selection, page breaks and
// output options are stored as JSON columns.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

type examJSON struct {
	slots, breaks, options []byte
}

func marshalExam(e *model.ExamRecord) (examJSON, error) {
	var (
		out examJSON
		err error
	)
	slots := e.Slots
	if slots == nil {
		slots = []model.SlotRef{}
	}
	if out.slots, err = json.Marshal(slots); err != nil {
		return out, fmt.Errorf("marshal questions: %w", err)
	}
	breaks := e.PageBreaks
	if breaks == nil {
		breaks = []int{}
	}
	if out.breaks, err = json.Marshal(breaks); err != nil {
		return out, fmt.Errorf("marshal page breaks: %w", err)
	}
	if out.options, err = json.Marshal(e.Options); err != nil {
		return out, fmt.Errorf("marshal options: %w", err)
	}
	return out, nil
}

func scanExam(row pgx.Row) (*model.ExamRecord, error) {
	e := &model.ExamRecord{}
	var raw examJSON
	err := row.Scan(&e.ID, &e.SchoolCode, &e.Subject, &e.SubjectCode, &e.GradeLevel, &e.Class, &e.Type,
		&e.Number, &e.Date, &e.DurationMinutes, &e.Topic, &e.SchoolYear,
		&raw.slots, &raw.breaks, &raw.options, &e.TotalPoints, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw.slots, &e.Slots); err != nil {
		return nil, fmt.Errorf("exam %d: decode questions: %w", e.ID, err)
	}
	if err := json.Unmarshal(raw.breaks, &e.PageBreaks); err != nil {
		return nil, fmt.Errorf("exam %d: decode page breaks: %w", e.ID, err)
	}
	if err := json.Unmarshal(raw.options, &e.Options); err != nil {
		return nil, fmt.Errorf("exam %d: decode options: %w", e.ID, err)
	}
	return e, nil
}

// Create inserts a new exam and fills in its id and timestamps.
func (r *ExamRepository) Create(ctx context.Context, e *model.ExamRecord) error {
	raw, err := marshalExam(e)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (school_code, subject, subject_code, grade_level, class, type, number, date,
		                    duration_minutes, topic, school_year, questions_json, page_breaks_json,
		                    options_json, total_points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at`,
		e.SchoolCode, e.Subject, e.SubjectCode, e.GradeLevel, e.Class, e.Type, e.Number, e.Date,
		e.DurationMinutes, e.Topic, e.SchoolYear, raw.slots, raw.breaks, raw.options, e.TotalPoints,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update replaces every stored field of an exam. Returns ErrNotFound for unknown ids.
func (r *ExamRepository) Update(ctx context.Context, e *model.ExamRecord) error {
	raw, err := marshalExam(e)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET school_code = $2, subject = $3, subject_code = $4, grade_level = $5, class = $6,
		     type = $7, number = $8, date = $9, duration_minutes = $10, topic = $11,
		     school_year = $12, questions_json = $13, page_breaks_json = $14, options_json = $15,
		     total_points = $16, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		e.ID, e.SchoolCode, e.Subject, e.SubjectCode, e.GradeLevel, e.Class, e.Type, e.Number, e.Date,
		e.DurationMinutes, e.Topic, e.SchoolYear, raw.slots, raw.breaks, raw.options, e.TotalPoints,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return notFound(err)
}

// GetByID retrieves a stored exam.
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*model.ExamRecord, error) {
	e, err := scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// ListRecent returns one page of exams, most recently edited first, and the total count.
func (r *ExamRepository) ListRecent(ctx context.Context, limit, offset int) ([]model.ExamRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 ORDER BY updated_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams := []model.ExamRecord{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}
