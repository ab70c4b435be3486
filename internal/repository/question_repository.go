package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/klausurgen/internal/model"
)

const questionColumns = `id, title, subject, topic, difficulty, demand, points, body, solution,
	min_space_cm, is_variation, grade_level, keywords, created_at`

// QuestionRepository handles question pool access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.Title, &q.Subject, &q.Topic, &q.Difficulty, &q.Demand, &q.Points,
		&q.Body, &q.Solution, &q.MinSpaceCM, &q.IsVariation, &q.GradeLevel, &q.Keywords, &q.CreatedAt)
	return q, err
}

// List returns the questions matching filter, newest first.
func (r *QuestionRepository) List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.Subject != "" {
		add("subject = ?", filter.Subject)
	}
	if filter.GradeLevel > 0 {
		add("grade_level = ?", filter.GradeLevel)
	}
	if filter.Difficulty != "" {
		add("difficulty = ?", filter.Difficulty)
	}
	if filter.Demand != "" {
		add("demand = ?", filter.Demand)
	}
	if filter.Search != "" {
		add("(title ILIKE ? OR topic ILIKE ? OR keywords ILIKE ?)", "%"+filter.Search+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByIDs returns the questions with the given ids keyed by id. Unknown ids are absent.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Question, error) {
	out := make(map[int64]model.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = q
	}
	return out, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (title, subject, topic, difficulty, demand, points, body, solution,
		                        min_space_cm, is_variation, grade_level, keywords)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at`,
		q.Title, q.Subject, q.Topic, q.Difficulty, q.Demand, q.Points, q.Body, q.Solution,
		q.MinSpaceCM, q.IsVariation, q.GradeLevel, q.Keywords,
	).Scan(&q.ID, &q.CreatedAt)
}
