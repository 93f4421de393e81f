package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
)

// identityFrom pulls the authenticated identity out of the request context,
// writing a 401 when it is missing.
func identityFrom(w http.ResponseWriter, r *http.Request) (*middleware.Identity, bool) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		http.Error(w, "Unauthorized: user identity not found in context", http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// parsePagination reads skip/limit query params with the defaults the
// frontend expects.
func parsePagination(r *http.Request) (limit, offset int) {
	limit, offset = 100, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func courseToDTO(c *model.Course) dto.CourseResponseDTO {
	return dto.CourseResponseDTO{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Order:       c.Order,
		IsPremium:   c.IsPremium,
		Category:    string(c.Category),
	}
}

func lessonToDTO(l *model.Lesson) dto.LessonResponseDTO {
	return dto.LessonResponseDTO{
		ID:              l.ID,
		CourseID:        l.CourseID,
		Title:           l.Title,
		Description:     l.Description,
		Content:         l.Content,
		Order:           l.Order,
		Difficulty:      string(l.Difficulty),
		LessonType:      string(l.LessonType),
		EstimatedTime:   l.EstimatedTime,
		IsPremium:       l.IsPremium,
		PrerequisiteIDs: l.PrerequisiteIDs,
	}
}

func progressToDTO(rec *model.ProgressRecord) dto.ProgressResponseDTO {
	// Absence is the "not started" state: zero value serializes as
	// {is_completed:false, completed_at:null}.
	if rec == nil {
		return dto.ProgressResponseDTO{}
	}
	return dto.ProgressResponseDTO{
		IsCompleted: rec.IsCompleted,
		CompletedAt: rec.CompletedAt,
	}
}

func courseProgressToDTO(p *model.CourseProgress) dto.CourseProgressResponseDTO {
	return dto.CourseProgressResponseDTO{
		TotalLessons:         p.TotalLessons,
		CompletedLessons:     p.CompletedLessons,
		CompletionPercentage: p.CompletionPercentage,
		LastAccessedLessonID: p.LastAccessedLessonID,
		LastAccessedAt:       p.LastAccessedAt,
	}
}
