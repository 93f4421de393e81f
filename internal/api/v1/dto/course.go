package dto

// CourseResponseDTO is returned in API responses for courses
type CourseResponseDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	IsPremium   bool   `json:"is_premium"`
	Category    string `json:"category"`
}

// CourseListResponseDTO wraps the ordered course list
type CourseListResponseDTO struct {
	Courses []CourseResponseDTO `json:"courses"`
}
