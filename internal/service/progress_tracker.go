package service

import (
	"context"
	"time"

	"app/internal/model"
	"app/internal/repository"
)

// ProgressTracker derives per-user progress views and mutates completion
// state. All reads go to the store of record on every call; nothing is
// cached in process.
type ProgressTracker interface {
	// GetLessonProgress returns the unique record for the pair, or nil when
	// the user has not started the lesson. Absence is the default state, not
	// an error; existence of the user or lesson is the caller's concern.
	GetLessonProgress(ctx context.Context, userID, lessonID int64) (*model.ProgressRecord, error)
	// UpdateLessonProgress upserts the completion state for the pair and
	// returns the persisted record. The completion timestamp is set when
	// completed is true and cleared otherwise.
	UpdateLessonProgress(ctx context.Context, userID, lessonID int64, completed bool) (*model.ProgressRecord, error)
	GetCourseProgress(ctx context.Context, userID, courseID int64) (*model.CourseProgress, error)
	// GetAllCoursesProgress returns one entry per course, ordered by the
	// course ordering key, with zeros for courses the user has not touched.
	GetAllCoursesProgress(ctx context.Context, userID int64) ([]model.CourseProgressSummary, error)
	// GetNextLesson returns the lowest-ordered lesson of the course that the
	// user has not completed, or nil when every lesson is completed. Only the
	// completed set is consulted; prerequisite edges are not.
	GetNextLesson(ctx context.Context, userID, courseID int64) (*model.Lesson, error)
}

type progressTracker struct {
	courseRepo   repository.CourseRepository
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
}

func NewProgressTracker(courseRepo repository.CourseRepository, lessonRepo repository.LessonRepository, progressRepo repository.ProgressRepository) ProgressTracker {
	return &progressTracker{courseRepo: courseRepo, lessonRepo: lessonRepo, progressRepo: progressRepo}
}

func (t *progressTracker) GetLessonProgress(ctx context.Context, userID, lessonID int64) (*model.ProgressRecord, error) {
	return t.progressRepo.GetByUserAndLesson(ctx, userID, lessonID)
}

func (t *progressTracker) UpdateLessonProgress(ctx context.Context, userID, lessonID int64, completed bool) (*model.ProgressRecord, error) {
	rec := &model.ProgressRecord{
		UserID:      userID,
		LessonID:    lessonID,
		IsCompleted: completed,
	}
	if completed {
		now := time.Now().UTC()
		rec.CompletedAt = &now
	}

	if err := t.progressRepo.Upsert(ctx, rec); err != nil {
		// A unique violation here means two first-completion calls raced on
		// the pair constraint; the retry resolves against the surviving row.
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		if err := t.progressRepo.Upsert(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (t *progressTracker) GetCourseProgress(ctx context.Context, userID, courseID int64) (*model.CourseProgress, error) {
	totalLessons, err := t.lessonRepo.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	completedLessons, err := t.progressRepo.CountCompletedInCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	percentage := 0.0
	if totalLessons > 0 {
		percentage = float64(completedLessons) / float64(totalLessons) * 100
	}

	progress := &model.CourseProgress{
		TotalLessons:         totalLessons,
		CompletedLessons:     completedLessons,
		CompletionPercentage: percentage,
	}

	last, err := t.progressRepo.GetLastAccessedInCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		lessonID := last.LessonID
		at := last.At
		progress.LastAccessedLessonID = &lessonID
		progress.LastAccessedAt = &at
	}

	return progress, nil
}

func (t *progressTracker) GetAllCoursesProgress(ctx context.Context, userID int64) ([]model.CourseProgressSummary, error) {
	courses, err := t.courseRepo.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.CourseProgressSummary, 0, len(courses))
	for _, course := range courses {
		progress, err := t.GetCourseProgress(ctx, userID, course.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.CourseProgressSummary{
			CourseID:       course.ID,
			CourseTitle:    course.Title,
			CourseProgress: *progress,
		})
	}

	return summaries, nil
}

func (t *progressTracker) GetNextLesson(ctx context.Context, userID, courseID int64) (*model.Lesson, error) {
	completedIDs, err := t.progressRepo.GetCompletedLessonIDs(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	completed := make(map[int64]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	lessons, err := t.lessonRepo.GetLessonsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	for i := range lessons {
		if _, ok := completed[lessons[i].ID]; !ok {
			return &lessons[i], nil
		}
	}

	return nil, nil
}
