package model

import "time"

// CourseCategory tags a course with its subject area.
type CourseCategory string

const (
	CategorySpark          CourseCategory = "spark"
	CategoryAPI            CourseCategory = "api"
	CategoryPython         CourseCategory = "python"
	CategoryDataScience    CourseCategory = "data_science"
	CategoryWebDevelopment CourseCategory = "web_development"
)

// Course is a top-level content grouping. Courses are ordered globally by
// Order (ties broken by ID) and may be premium-gated.
type Course struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Order       int            `db:"order" json:"order"`
	IsPremium   bool           `db:"is_premium" json:"is_premium"`
	Category    CourseCategory `db:"category" json:"category"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
