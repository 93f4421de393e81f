package handler

import (
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// ProgressHandler handles the all-courses progress rollup
type ProgressHandler struct {
	tracker service.ProgressTracker
	logger  zerolog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(tracker service.ProgressTracker, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, logger: logger}
}

// RegisterRoutes mounts the progress rollup route
func (h *ProgressHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/progress", authMw(http.HandlerFunc(h.getAllCoursesProgress)))
}

// getAllCoursesProgress godoc
// @Summary Get progress across all courses
// @Description Returns one entry per course, ordered by the course ordering key, with zeros for untouched courses.
// @Tags progress
// @Produce json
// @Success 200 {array} dto.CourseProgressSummaryDTO
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "Could not retrieve progress"
// @Router /progress [get]
func (h *ProgressHandler) getAllCoursesProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/progress" {
		http.NotFound(w, r)
		return
	}
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	summaries, err := h.tracker.GetAllCoursesProgress(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get all courses progress")
		http.Error(w, "Could not retrieve progress", http.StatusInternalServerError)
		return
	}

	resp := make([]dto.CourseProgressSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, dto.CourseProgressSummaryDTO{
			CourseID:    s.CourseID,
			CourseTitle: s.CourseTitle,
			CourseProgressResponseDTO: dto.CourseProgressResponseDTO{
				TotalLessons:         s.TotalLessons,
				CompletedLessons:     s.CompletedLessons,
				CompletionPercentage: s.CompletionPercentage,
				LastAccessedLessonID: s.LastAccessedLessonID,
				LastAccessedAt:       s.LastAccessedAt,
			},
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
