package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProgressRepository interface {
	// GetByUserAndLesson returns the unique record for the pair, or nil when
	// the user has not started the lesson.
	GetByUserAndLesson(ctx context.Context, userID, lessonID int64) (*model.ProgressRecord, error)
	// Upsert writes the completion state for the (user, lesson) pair in a
	// single statement. The unique constraint on the pair makes the
	// read-modify-write atomic with respect to concurrent callers; the
	// persisted row is scanned back into rec.
	Upsert(ctx context.Context, rec *model.ProgressRecord) error
	CountCompletedInCourse(ctx context.Context, userID, courseID int64) (int, error)
	// GetLastAccessedInCourse returns the lesson id and timestamp of the most
	// recently updated record for the user within the course, or nil when the
	// user has none there.
	GetLastAccessedInCourse(ctx context.Context, userID, courseID int64) (*model.LastAccessed, error)
	GetCompletedLessonIDs(ctx context.Context, userID, courseID int64) ([]int64, error)
}

type progressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetByUserAndLesson(ctx context.Context, userID, lessonID int64) (*model.ProgressRecord, error) {
	query := `
		SELECT id, user_id, lesson_id, is_completed, completed_at, updated_at
		FROM user_progress
		WHERE user_id = $1 AND lesson_id = $2
	`
	var rec model.ProgressRecord
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.LessonID,
		&rec.IsCompleted,
		&rec.CompletedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan progress row: %w", err)
	}
	return &rec, nil
}

func (r *progressRepository) Upsert(ctx context.Context, rec *model.ProgressRecord) error {
	query := `
		INSERT INTO user_progress (user_id, lesson_id, is_completed, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			completed_at = EXCLUDED.completed_at,
			updated_at = NOW()
		RETURNING id, user_id, lesson_id, is_completed, completed_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.LessonID, rec.IsCompleted, rec.CompletedAt,
	).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.LessonID,
		&rec.IsCompleted,
		&rec.CompletedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	return nil
}

func (r *progressRepository) CountCompletedInCourse(ctx context.Context, userID, courseID int64) (int, error) {
	query := `
		SELECT COUNT(up.id)
		FROM user_progress up
		JOIN lessons l ON l.id = up.lesson_id
		WHERE up.user_id = $1 AND up.is_completed AND l.course_id = $2
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	return count, nil
}

func (r *progressRepository) GetLastAccessedInCourse(ctx context.Context, userID, courseID int64) (*model.LastAccessed, error) {
	query := `
		SELECT up.lesson_id, up.updated_at
		FROM user_progress up
		JOIN lessons l ON l.id = up.lesson_id
		WHERE up.user_id = $1 AND l.course_id = $2
		ORDER BY up.updated_at DESC
		LIMIT 1
	`
	var last model.LastAccessed
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&last.LessonID, &last.At)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan last accessed row: %w", err)
	}
	return &last, nil
}

func (r *progressRepository) GetCompletedLessonIDs(ctx context.Context, userID, courseID int64) ([]int64, error) {
	query := `
		SELECT up.lesson_id
		FROM user_progress up
		JOIN lessons l ON l.id = up.lesson_id
		WHERE up.user_id = $1 AND up.is_completed AND l.course_id = $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan completed lesson row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
