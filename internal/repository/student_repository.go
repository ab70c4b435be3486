package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/klausurgen/internal/model"
)

// StudentRepository reads the class rosters.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// ListByClass returns the roster of one class ordered by family then given name.
func (r *StudentRepository) ListByClass(ctx context.Context, q model.RosterQuery) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, school_year, school, student_id, given_name, family_name, class,
		        account, gender, birthday, grade_level
		 FROM students
		 WHERE school_year = $1 AND school = $2 AND class = $3
		 ORDER BY family_name, given_name, student_id`,
		q.SchoolYear, q.School, q.Class,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.SchoolYear, &s.School, &s.StudentID, &s.GivenName, &s.FamilyName,
			&s.Class, &s.Account, &s.Gender, &s.Birthday, &s.GradeLevel); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// ListClasses returns the distinct class names of a school in one school year.
func (r *StudentRepository) ListClasses(ctx context.Context, schoolYear, school string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT class FROM students
		 WHERE school_year = $1 AND school = $2
		 ORDER BY class`,
		schoolYear, school,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Upsert inserts a student or refreshes the roster entry with the same
// (school year, school, student id).
func (r *StudentRepository) Upsert(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (school_year, school, student_id, given_name, family_name, class,
		                       account, gender, birthday, grade_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (school_year, school, student_id) DO UPDATE
		 SET given_name = EXCLUDED.given_name, family_name = EXCLUDED.family_name,
		     class = EXCLUDED.class, account = EXCLUDED.account, gender = EXCLUDED.gender,
		     birthday = EXCLUDED.birthday, grade_level = EXCLUDED.grade_level
		 RETURNING id`,
		s.SchoolYear, s.School, s.StudentID, s.GivenName, s.FamilyName, s.Class,
		s.Account, s.Gender, s.Birthday, s.GradeLevel,
	).Scan(&s.ID)
}
