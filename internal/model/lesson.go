package model

import "time"

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

type LessonType string

const (
	LessonTheory    LessonType = "theory"
	LessonHandsOn   LessonType = "hands_on"
	LessonProject   LessonType = "project"
	LessonCaseStudy LessonType = "case_study"
)

// Lesson is a unit of content within a course, ordered by Order within its
// course. Prerequisite edges are directed: an entry in PrerequisiteIDs means
// this lesson requires that one, not the reverse.
type Lesson struct {
	ID            int64           `db:"id" json:"id"`
	CourseID      int64           `db:"course_id" json:"course_id"`
	Title         string          `db:"title" json:"title"`
	Description   string          `db:"description" json:"description"`
	Content       string          `db:"content" json:"content"`
	Order         int             `db:"order" json:"order"`
	Difficulty    DifficultyLevel `db:"difficulty" json:"difficulty"`
	LessonType    LessonType      `db:"lesson_type" json:"lesson_type"`
	EstimatedTime int             `db:"estimated_time" json:"estimated_time"` // minutes
	IsPremium     bool            `db:"is_premium" json:"is_premium"`

	// Loaded from the lesson_prerequisites edge table on detail reads;
	// empty on list reads.
	PrerequisiteIDs []int64 `json:"prerequisite_ids,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LessonLink is the minimal reference used by navigation payloads.
type LessonLink struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// LessonNavigation holds the previous and next lessons within a course,
// ordered by the lesson Order key. Either side is nil at the course edges.
type LessonNavigation struct {
	Previous *LessonLink `json:"previous"`
	Next     *LessonLink `json:"next"`
}
