package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// ContentService exposes read access to the course/lesson/resource hierarchy.
type ContentService interface {
	ListCourses(ctx context.Context, limit, offset int) ([]model.Course, error)
	GetCourse(ctx context.Context, courseID int64) (*model.Course, error)
	GetCourseLessons(ctx context.Context, courseID int64) ([]model.Lesson, error)
	ListLessons(ctx context.Context, courseID *int64, limit, offset int) ([]model.Lesson, error)
	// GetLesson returns the lesson with its prerequisite ids attached.
	GetLesson(ctx context.Context, lessonID int64) (*model.Lesson, error)
	GetLessonResources(ctx context.Context, lessonID int64) ([]model.Resource, error)
	GetLessonNavigation(ctx context.Context, lessonID int64) (*model.LessonNavigation, error)
}

type contentService struct {
	courseRepo   repository.CourseRepository
	lessonRepo   repository.LessonRepository
	resourceRepo repository.ResourceRepository
}

func NewContentService(courseRepo repository.CourseRepository, lessonRepo repository.LessonRepository, resourceRepo repository.ResourceRepository) ContentService {
	return &contentService{courseRepo: courseRepo, lessonRepo: lessonRepo, resourceRepo: resourceRepo}
}

func (s *contentService) ListCourses(ctx context.Context, limit, offset int) ([]model.Course, error) {
	return s.courseRepo.ListCourses(ctx, limit, offset)
}

func (s *contentService) GetCourse(ctx context.Context, courseID int64) (*model.Course, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *contentService) GetCourseLessons(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	return s.lessonRepo.GetLessonsByCourseID(ctx, courseID)
}

func (s *contentService) ListLessons(ctx context.Context, courseID *int64, limit, offset int) ([]model.Lesson, error) {
	return s.lessonRepo.ListLessons(ctx, courseID, limit, offset)
}

func (s *contentService) GetLesson(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	prereqs, err := s.lessonRepo.GetPrerequisiteIDs(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	lesson.PrerequisiteIDs = prereqs

	return lesson, nil
}

func (s *contentService) GetLessonResources(ctx context.Context, lessonID int64) ([]model.Resource, error) {
	lesson, err := s.lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	return s.resourceRepo.GetResourcesByLessonID(ctx, lessonID)
}

func (s *contentService) GetLessonNavigation(ctx context.Context, lessonID int64) (*model.LessonNavigation, error) {
	lesson, err := s.lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	prev, next, err := s.lessonRepo.GetAdjacent(ctx, lesson)
	if err != nil {
		return nil, err
	}

	return &model.LessonNavigation{Previous: prev, Next: next}, nil
}
