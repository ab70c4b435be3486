package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/klausurgen/internal/model"
)

// SchoolRepository handles school and logo lookups.
type SchoolRepository struct {
	pool *pgxpool.Pool
}

// NewSchoolRepository creates a new SchoolRepository.
func NewSchoolRepository(pool *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{pool: pool}
}

// GetByCode retrieves a school and its logo. Returns ErrNotFound for unknown codes.
func (r *SchoolRepository) GetByCode(ctx context.Context, code string) (*model.School, error) {
	s := &model.School{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, COALESCE(logo, ''::bytea) FROM schools WHERE code = $1`, code,
	).Scan(&s.ID, &s.Code, &s.Name, &s.Logo)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Upsert inserts a school or replaces name and logo of an existing code.
func (r *SchoolRepository) Upsert(ctx context.Context, s *model.School) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO schools (code, name, logo) VALUES ($1, $2, $3)
		 ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, logo = EXCLUDED.logo
		 RETURNING id`,
		s.Code, s.Name, s.Logo,
	).Scan(&s.ID)
}

// SetLogo replaces the logo of an existing school.
func (r *SchoolRepository) SetLogo(ctx context.Context, code string, logo []byte) error {
	tag, err := r.pool.Exec(ctx, `UPDATE schools SET logo = $2 WHERE code = $1`, code, logo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
