package model

import "time"

// ProgressRecord is the per-(user, lesson) completion state. At most one
// record exists per pair; the user_progress table enforces this with a unique
// constraint. Absence of a record is the "not started" state, not an error.
type ProgressRecord struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	LessonID    int64      `db:"lesson_id" json:"lesson_id"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// LastAccessed identifies the most recently touched progress record of a user
// within a course.
type LastAccessed struct {
	LessonID int64
	At       time.Time
}

// CourseProgress is the derived per-course view for one user.
// LastAccessedLessonID and LastAccessedAt are nil when the user has no
// progress records in the course.
type CourseProgress struct {
	TotalLessons         int        `json:"total_lessons"`
	CompletedLessons     int        `json:"completed_lessons"`
	CompletionPercentage float64    `json:"completion_percentage"`
	LastAccessedLessonID *int64     `json:"last_accessed_lesson_id"`
	LastAccessedAt       *time.Time `json:"last_accessed_at"`
}

// CourseProgressSummary prepends course identity to its progress view, one
// entry per course in the all-courses rollup.
type CourseProgressSummary struct {
	CourseID    int64  `json:"course_id"`
	CourseTitle string `json:"course_title"`
	CourseProgress
}
