package dto

// LessonResponseDTO is returned in API responses for lessons
type LessonResponseDTO struct {
	ID              int64   `json:"id"`
	CourseID        int64   `json:"course_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Content         string  `json:"content"`
	Order           int     `json:"order"`
	Difficulty      string  `json:"difficulty"`
	LessonType      string  `json:"lesson_type"`
	EstimatedTime   int     `json:"estimated_time"`
	IsPremium       bool    `json:"is_premium"`
	PrerequisiteIDs []int64 `json:"prerequisite_ids,omitempty"`
}

// LessonListResponseDTO wraps an ordered lesson list
type LessonListResponseDTO struct {
	Lessons []LessonResponseDTO `json:"lessons"`
}

// LessonLinkDTO is a minimal lesson reference used by navigation responses
type LessonLinkDTO struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// LessonNavigationResponseDTO holds previous/next links within a course;
// either side is null at the course edges
type LessonNavigationResponseDTO struct {
	Previous *LessonLinkDTO `json:"previous"`
	Next     *LessonLinkDTO `json:"next"`
}

// NextLessonResponseDTO wraps the next uncompleted lesson of a course; Lesson
// is null when the course is fully completed
type NextLessonResponseDTO struct {
	Lesson *LessonResponseDTO `json:"lesson"`
}
