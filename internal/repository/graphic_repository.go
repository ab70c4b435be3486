package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/klausurgen/internal/model"
)

// GraphicRepository handles the images attached to questions.
type GraphicRepository struct {
	pool *pgxpool.Pool
}

// NewGraphicRepository creates a new GraphicRepository.
func NewGraphicRepository(pool *pgxpool.Pool) *GraphicRepository {
	return &GraphicRepository{pool: pool}
}

// ListForQuestions returns every graphic of the given questions.
func (r *GraphicRepository) ListForQuestions(ctx context.Context, questionIDs []int64) ([]model.Graphic, error) {
	graphics := []model.Graphic{}
	if len(questionIDs) == 0 {
		return graphics, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, name, file_type, blob
		 FROM question_graphics
		 WHERE question_id = ANY($1)
		 ORDER BY question_id, name`, questionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g model.Graphic
		if err := rows.Scan(&g.QuestionID, &g.Name, &g.FileType, &g.Blob); err != nil {
			return nil, err
		}
		graphics = append(graphics, g)
	}
	return graphics, rows.Err()
}

// Create stores a graphic for a question, replacing one with the same name.
func (r *GraphicRepository) Create(ctx context.Context, g *model.Graphic) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO question_graphics (question_id, name, file_type, blob)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (question_id, name) DO UPDATE
		 SET file_type = EXCLUDED.file_type, blob = EXCLUDED.blob`,
		g.QuestionID, g.Name, g.FileType, g.Blob,
	)
	return err
}
