package dto

import "time"

// ProgressUpdateDTO is used for incoming progress update requests. IsCompleted
// defaults to true when omitted.
type ProgressUpdateDTO struct {
	IsCompleted *bool `json:"is_completed,omitempty"`
}

// ProgressResponseDTO is returned for a single (user, lesson) progress record.
// A user who never touched the lesson gets the zero value: is_completed false
// and completed_at null.
type ProgressResponseDTO struct {
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CourseProgressResponseDTO is the derived per-course progress view
type CourseProgressResponseDTO struct {
	TotalLessons         int        `json:"total_lessons"`
	CompletedLessons     int        `json:"completed_lessons"`
	CompletionPercentage float64    `json:"completion_percentage"`
	LastAccessedLessonID *int64     `json:"last_accessed_lesson_id"`
	LastAccessedAt       *time.Time `json:"last_accessed_at"`
}

// CourseProgressSummaryDTO prepends course identity to its progress view in
// the all-courses rollup
type CourseProgressSummaryDTO struct {
	CourseID    int64  `json:"course_id"`
	CourseTitle string `json:"course_title"`
	CourseProgressResponseDTO
}
