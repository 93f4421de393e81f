package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LessonHandler handles lesson-related endpoints, including per-lesson
// progress reads and updates.
type LessonHandler struct {
	contentService service.ContentService
	tracker        service.ProgressTracker
	validate       *validator.Validate
	logger         zerolog.Logger
	auth           func(http.Handler) http.Handler
	optionalAuth   func(http.Handler) http.Handler
}

// NewLessonHandler creates a new LessonHandler
func NewLessonHandler(contentService service.ContentService, tracker service.ProgressTracker, validate *validator.Validate, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{contentService: contentService, tracker: tracker, validate: validate, logger: logger}
}

// RegisterRoutes mounts lesson routes. Lesson detail uses optional auth so
// the premium gate can see the caller's entitlement; progress routes require
// auth.
func (h *LessonHandler) RegisterRoutes(mux *http.ServeMux, authMw, optionalAuthMw func(http.Handler) http.Handler) {
	h.auth = authMw
	h.optionalAuth = optionalAuthMw
	mux.Handle("/lessons", http.HandlerFunc(h.listLessons))
	mux.Handle("/lessons/", http.HandlerFunc(h.handleLesson))
}

func (h *LessonHandler) handleLesson(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/lessons/"), "/"), "/")
	if _, err := strconv.ParseInt(segs[0], 10, 64); err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		h.optionalAuth(http.HandlerFunc(h.getLesson)).ServeHTTP(w, r)
	case len(segs) == 2 && segs[1] == "resources" && r.Method == http.MethodGet:
		h.getLessonResources(w, r)
	case len(segs) == 2 && segs[1] == "navigation" && r.Method == http.MethodGet:
		h.getLessonNavigation(w, r)
	case len(segs) == 2 && segs[1] == "progress" && r.Method == http.MethodGet:
		h.auth(http.HandlerFunc(h.getLessonProgress)).ServeHTTP(w, r)
	case len(segs) == 2 && segs[1] == "progress" && r.Method == http.MethodPost:
		h.auth(http.HandlerFunc(h.updateLessonProgress)).ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *LessonHandler) lessonIDFromPath(r *http.Request) int64 {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/lessons/"), "/"), "/")
	id, _ := strconv.ParseInt(segs[0], 10, 64)
	return id
}

// listLessons godoc
// @Summary List lessons
// @Description Returns lessons ordered by their ordering key, optionally filtered by course.
// @Tags lessons
// @Produce json
// @Param course_id query int false "Filter by course"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.LessonListResponseDTO
// @Failure 500 {string} string "Failed to list lessons"
// @Router /lessons [get]
func (h *LessonHandler) listLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/lessons" {
		http.NotFound(w, r)
		return
	}
	limit, offset := parsePagination(r)

	var courseID *int64
	if v := r.URL.Query().Get("course_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid course_id", http.StatusBadRequest)
			return
		}
		courseID = &id
	}

	lessons, err := h.contentService.ListLessons(r.Context(), courseID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list lessons")
		http.Error(w, "Failed to list lessons: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.LessonListResponseDTO{Lessons: make([]dto.LessonResponseDTO, 0, len(lessons))}
	for i := range lessons {
		resp.Lessons = append(resp.Lessons, lessonToDTO(&lessons[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getLesson godoc
// @Summary Get a lesson
// @Description Retrieves a lesson by its ID. Premium lessons require a premium entitlement.
// @Tags lessons
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} dto.LessonResponseDTO
// @Failure 403 {string} string "This lesson requires premium access"
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Failed to retrieve lesson"
// @Router /lessons/{lessonId} [get]
func (h *LessonHandler) getLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.contentService.GetLesson(r.Context(), h.lessonIDFromPath(r))
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			http.Error(w, "Lesson not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve lesson: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Premium gate: the entitlement is asserted by the identity provider in
	// the token claims.
	if lesson.IsPremium {
		identity := middleware.IdentityFromContext(r.Context())
		if identity == nil || !identity.IsPremium {
			http.Error(w, "This lesson requires premium access", http.StatusForbidden)
			return
		}
	}

	writeJSON(w, http.StatusOK, lessonToDTO(lesson))
}

// getLessonResources godoc
// @Summary List lesson resources
// @Description Returns the supplementary resources attached to a lesson.
// @Tags lessons
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} dto.ResourceListResponseDTO
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Failed to list resources"
// @Router /lessons/{lessonId}/resources [get]
func (h *LessonHandler) getLessonResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.contentService.GetLessonResources(r.Context(), h.lessonIDFromPath(r))
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			http.Error(w, "Lesson not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to list resources: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.ResourceListResponseDTO{Resources: make([]dto.ResourceResponseDTO, 0, len(resources))}
	for _, res := range resources {
		resp.Resources = append(resp.Resources, dto.ResourceResponseDTO{
			ID:          res.ID,
			Title:       res.Title,
			Type:        res.Type,
			Content:     res.Content,
			Description: res.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// getLessonNavigation godoc
// @Summary Get lesson navigation
// @Description Returns the previous and next lessons within the same course.
// @Tags lessons
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} dto.LessonNavigationResponseDTO
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Failed to retrieve navigation"
// @Router /lessons/{lessonId}/navigation [get]
func (h *LessonHandler) getLessonNavigation(w http.ResponseWriter, r *http.Request) {
	nav, err := h.contentService.GetLessonNavigation(r.Context(), h.lessonIDFromPath(r))
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			http.Error(w, "Lesson not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve navigation: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.LessonNavigationResponseDTO{}
	if nav.Previous != nil {
		resp.Previous = &dto.LessonLinkDTO{ID: nav.Previous.ID, Title: nav.Previous.Title}
	}
	if nav.Next != nil {
		resp.Next = &dto.LessonLinkDTO{ID: nav.Next.ID, Title: nav.Next.Title}
	}
	writeJSON(w, http.StatusOK, resp)
}

// getLessonProgress godoc
// @Summary Get lesson progress
// @Description Returns the authenticated user's progress for a lesson. Users who never touched the lesson get the not-started default.
// @Tags progress
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} dto.ProgressResponseDTO
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Could not retrieve lesson progress"
// @Router /lessons/{lessonId}/progress [get]
func (h *LessonHandler) getLessonProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	lessonID := h.lessonIDFromPath(r)

	if _, err := h.contentService.GetLesson(r.Context(), lessonID); err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			http.Error(w, "Lesson not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve lesson: "+err.Error(), http.StatusInternalServerError)
		return
	}

	rec, err := h.tracker.GetLessonProgress(r.Context(), identity.UserID, lessonID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get lesson progress")
		http.Error(w, "Could not retrieve lesson progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, progressToDTO(rec))
}

// updateLessonProgress godoc
// @Summary Update lesson progress
// @Description Upserts the authenticated user's completion state for a lesson. is_completed defaults to true.
// @Tags progress
// @Accept json
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param progress body dto.ProgressUpdateDTO false "Progress update request"
// @Success 200 {object} dto.ProgressResponseDTO
// @Failure 400 {string} string "Invalid JSON payload"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Lesson not found"
// @Failure 500 {string} string "Could not update lesson progress"
// @Router /lessons/{lessonId}/progress [post]
func (h *LessonHandler) updateLessonProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	lessonID := h.lessonIDFromPath(r)

	if _, err := h.contentService.GetLesson(r.Context(), lessonID); err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			http.Error(w, "Lesson not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve lesson: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// An empty body means "mark completed".
	var req dto.ProgressUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	completed := true
	if req.IsCompleted != nil {
		completed = *req.IsCompleted
	}

	rec, err := h.tracker.UpdateLessonProgress(r.Context(), identity.UserID, lessonID, completed)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to update lesson progress")
		http.Error(w, "Could not update lesson progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, progressToDTO(rec))
}
