package model

import "time"

// Resource is supplementary material attached to a lesson. The type tag and
// content payload are opaque to this service.
type Resource struct {
	ID          int64     `db:"id" json:"id"`
	LessonID    int64     `db:"lesson_id" json:"lesson_id"`
	Title       string    `db:"title" json:"title"`
	Type        string    `db:"type" json:"type"`
	Content     string    `db:"content" json:"content"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
