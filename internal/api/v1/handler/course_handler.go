package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// CourseHandler handles course-related endpoints
type CourseHandler struct {
	contentService service.ContentService
	tracker        service.ProgressTracker
	logger         zerolog.Logger
	auth           func(http.Handler) http.Handler
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(contentService service.ContentService, tracker service.ProgressTracker, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{contentService: contentService, tracker: tracker, logger: logger}
}

// RegisterRoutes mounts course routes. Progress subroutes require auth; the
// rest of the hierarchy is public.
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	h.auth = authMw
	mux.Handle("/courses", http.HandlerFunc(h.listCourses))
	mux.Handle("/courses/", http.HandlerFunc(h.handleCourse))
}

func (h *CourseHandler) handleCourse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	segs := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/courses/"), "/"), "/")
	if _, err := strconv.ParseInt(segs[0], 10, 64); err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(segs) == 1:
		h.getCourse(w, r)
	case len(segs) == 2 && segs[1] == "lessons":
		h.getCourseLessons(w, r)
	case len(segs) == 2 && segs[1] == "progress":
		h.auth(http.HandlerFunc(h.getCourseProgress)).ServeHTTP(w, r)
	case len(segs) == 2 && segs[1] == "next-lesson":
		h.auth(http.HandlerFunc(h.getNextLesson)).ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *CourseHandler) courseIDFromPath(r *http.Request) int64 {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/courses/"), "/"), "/")
	id, _ := strconv.ParseInt(segs[0], 10, 64)
	return id
}

// listCourses godoc
// @Summary List courses
// @Description Returns all courses ordered by their ordering key.
// @Tags courses
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.CourseListResponseDTO
// @Failure 500 {string} string "Failed to list courses"
// @Router /courses [get]
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/courses" {
		http.NotFound(w, r)
		return
	}
	limit, offset := parsePagination(r)

	courses, err := h.contentService.ListCourses(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list courses")
		http.Error(w, "Failed to list courses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.CourseListResponseDTO{Courses: make([]dto.CourseResponseDTO, 0, len(courses))}
	for i := range courses {
		resp.Courses = append(resp.Courses, courseToDTO(&courses[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getCourse godoc
// @Summary Get a course
// @Description Retrieves a course by its ID.
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to retrieve course"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.contentService.GetCourse(r.Context(), h.courseIDFromPath(r))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, courseToDTO(course))
}

// getCourseLessons godoc
// @Summary List lessons of a course
// @Description Returns the lessons of a course ordered by the lesson ordering key.
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.LessonListResponseDTO
// @Failure 500 {string} string "Failed to list lessons"
// @Router /courses/{courseId}/lessons [get]
func (h *CourseHandler) getCourseLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.contentService.GetCourseLessons(r.Context(), h.courseIDFromPath(r))
	if err != nil {
		http.Error(w, "Failed to list lessons: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.LessonListResponseDTO{Lessons: make([]dto.LessonResponseDTO, 0, len(lessons))}
	for i := range lessons {
		resp.Lessons = append(resp.Lessons, lessonToDTO(&lessons[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getCourseProgress godoc
// @Summary Get course progress
// @Description Returns the authenticated user's aggregate progress in a course.
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.CourseProgressResponseDTO
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to retrieve course progress"
// @Router /courses/{courseId}/progress [get]
func (h *CourseHandler) getCourseProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	courseID := h.courseIDFromPath(r)

	// Existence check happens here; the tracker would just report zeros for
	// an unknown course.
	if _, err := h.contentService.GetCourse(r.Context(), courseID); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}

	progress, err := h.tracker.GetCourseProgress(r.Context(), identity.UserID, courseID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get course progress")
		http.Error(w, "Could not retrieve course progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, courseProgressToDTO(progress))
}

// getNextLesson godoc
// @Summary Get the next uncompleted lesson
// @Description Returns the lowest-ordered lesson of the course the user has not completed; lesson is null when the course is finished.
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.NextLessonResponseDTO
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Course not found"
// @Failure 500 {string} string "Failed to retrieve next lesson"
// @Router /courses/{courseId}/next-lesson [get]
func (h *CourseHandler) getNextLesson(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	courseID := h.courseIDFromPath(r)

	if _, err := h.contentService.GetCourse(r.Context(), courseID); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}

	lesson, err := h.tracker.GetNextLesson(r.Context(), identity.UserID, courseID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get next lesson")
		http.Error(w, "Could not retrieve next lesson", http.StatusInternalServerError)
		return
	}

	resp := dto.NextLessonResponseDTO{}
	if lesson != nil {
		d := lessonToDTO(lesson)
		resp.Lesson = &d
	}
	writeJSON(w, http.StatusOK, resp)
}
