package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"app/internal/model"
)

type LessonRepository interface {
	// ListLessons returns lessons ordered by their ordering key, optionally
	// filtered to a single course.
	ListLessons(ctx context.Context, courseID *int64, limit, offset int) ([]model.Lesson, error)
	GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error)
	// GetLessonsByCourseID returns every lesson of a course ordered by the
	// lesson ordering key.
	GetLessonsByCourseID(ctx context.Context, courseID int64) ([]model.Lesson, error)
	CountByCourse(ctx context.Context, courseID int64) (int, error)
	// GetAdjacent returns the previous and next lessons around the given
	// lesson within its course, by ordering key. Either may be nil.
	GetAdjacent(ctx context.Context, lesson *model.Lesson) (prev, next *model.LessonLink, err error)
	// GetPrerequisiteIDs returns the ids of lessons the given lesson requires.
	GetPrerequisiteIDs(ctx context.Context, lessonID int64) ([]int64, error)
}

type lessonRepository struct {
	db *sql.DB
}

func NewLessonRepository(db *sql.DB) LessonRepository {
	return &lessonRepository{db: db}
}

const lessonColumns = `id, course_id, title, description, content, "order", difficulty, lesson_type, estimated_time, is_premium, created_at, updated_at`

func scanLesson(row interface{ Scan(...any) error }, l *model.Lesson) error {
	return row.Scan(
		&l.ID,
		&l.CourseID,
		&l.Title,
		&l.Description,
		&l.Content,
		&l.Order,
		&l.Difficulty,
		&l.LessonType,
		&l.EstimatedTime,
		&l.IsPremium,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
}

func (r *lessonRepository) ListLessons(ctx context.Context, courseID *int64, limit, offset int) ([]model.Lesson, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if courseID != nil {
		query := `
			SELECT ` + lessonColumns + `
			FROM lessons
			WHERE course_id = $1
			ORDER BY "order" ASC
			LIMIT $2 OFFSET $3
		`
		rows, err = r.db.QueryContext(ctx, query, *courseID, limit, offset)
	} else {
		query := `
			SELECT ` + lessonColumns + `
			FROM lessons
			ORDER BY "order" ASC
			LIMIT $1 OFFSET $2
		`
		rows, err = r.db.QueryContext(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

func (r *lessonRepository) GetLessonsByCourseID(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE course_id = $1
		ORDER BY "order" ASC
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons by course: %w", err)
	}
	defer rows.Close()

	return collectLessons(rows)
}

func collectLessons(rows *sql.Rows) ([]model.Lesson, error) {
	var lessons []model.Lesson
	for rows.Next() {
		var lesson model.Lesson
		if err := scanLesson(rows, &lesson); err != nil {
			return nil, fmt.Errorf("failed to scan lesson row: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if len(lessons) == 0 {
		return []model.Lesson{}, nil
	}

	return lessons, nil
}

func (r *lessonRepository) GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE id = $1
	`
	var l model.Lesson
	if err := scanLesson(r.db.QueryRowContext(ctx, query, lessonID), &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan lesson row: %w", err)
	}
	return &l, nil
}

func (r *lessonRepository) CountByCourse(ctx context.Context, courseID int64) (int, error) {
	query := `SELECT COUNT(id) FROM lessons WHERE course_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

func (r *lessonRepository) GetAdjacent(ctx context.Context, lesson *model.Lesson) (*model.LessonLink, *model.LessonLink, error) {
	prevQuery := `
		SELECT id, title
		FROM lessons
		WHERE course_id = $1 AND "order" < $2
		ORDER BY "order" DESC
		LIMIT 1
	`
	nextQuery := `
		SELECT id, title
		FROM lessons
		WHERE course_id = $1 AND "order" > $2
		ORDER BY "order" ASC
		LIMIT 1
	`

	scanLink := func(query string) (*model.LessonLink, error) {
		var link model.LessonLink
		err := r.db.QueryRowContext(ctx, query, lesson.CourseID, lesson.Order).Scan(&link.ID, &link.Title)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to scan adjacent lesson: %w", err)
		}
		return &link, nil
	}

	prev, err := scanLink(prevQuery)
	if err != nil {
		return nil, nil, err
	}
	next, err := scanLink(nextQuery)
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (r *lessonRepository) GetPrerequisiteIDs(ctx context.Context, lessonID int64) ([]int64, error) {
	query := `
		SELECT prerequisite_id
		FROM lesson_prerequisites
		WHERE lesson_id = $1
		ORDER BY prerequisite_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson prerequisites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}
