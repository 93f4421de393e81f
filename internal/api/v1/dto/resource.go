package dto

// ResourceResponseDTO is returned in API responses for lesson resources
type ResourceResponseDTO struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Content     string  `json:"content"`
	Description *string `json:"description"`
}

// ResourceListResponseDTO wraps a lesson's resources
type ResourceListResponseDTO struct {
	Resources []ResourceResponseDTO `json:"resources"`
}
