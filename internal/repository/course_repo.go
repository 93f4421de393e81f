package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"app/internal/model"
)

// CourseRepository defines the interface for interacting with course data.
// The content hierarchy is read-only from this service's perspective.
type CourseRepository interface {
	// ListCourses returns courses ordered by their ordering key, ties broken
	// by id ascending.
	ListCourses(ctx context.Context, limit, offset int) ([]model.Course, error)
	// GetAllCourses returns every course in order, without pagination.
	GetAllCourses(ctx context.Context) ([]model.Course, error)
	GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error)
}

type courseRepo struct {
	db *sql.DB
}

func NewCourseRepo(db *sql.DB) CourseRepository {
	return &courseRepo{db: db}
}

const courseColumns = `id, title, description, "order", is_premium, category, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }, c *model.Course) error {
	return row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Order,
		&c.IsPremium,
		&c.Category,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *courseRepo) ListCourses(ctx context.Context, limit, offset int) ([]model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY "order" ASC, id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func (r *courseRepo) GetAllCourses(ctx context.Context) ([]model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY "order" ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func collectCourses(rows *sql.Rows) ([]model.Course, error) {
	var courses []model.Course
	for rows.Next() {
		var course model.Course
		if err := scanCourse(rows, &course); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// If no courses found, return an empty slice, not nil
	if len(courses) == 0 {
		return []model.Course{}, nil
	}

	return courses, nil
}

func (r *courseRepo) GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1
	`
	var c model.Course
	if err := scanCourse(r.db.QueryRowContext(ctx, query, courseID), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan course row: %w", err)
	}
	return &c, nil
}
