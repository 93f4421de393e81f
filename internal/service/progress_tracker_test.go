package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// fakeContentStore backs the course and lesson repository interfaces with
// in-memory slices.
type fakeContentStore struct {
	courses []model.Course
	lessons []model.Lesson
}

func (s *fakeContentStore) sortedCourses() []model.Course {
	out := make([]model.Course, len(s.courses))
	copy(out, s.courses)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *fakeContentStore) ListCourses(ctx context.Context, limit, offset int) ([]model.Course, error) {
	out := s.sortedCourses()
	if offset >= len(out) {
		return []model.Course{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeContentStore) GetAllCourses(ctx context.Context) ([]model.Course, error) {
	return s.sortedCourses(), nil
}

func (s *fakeContentStore) GetCourseByID(ctx context.Context, courseID int64) (*model.Course, error) {
	for i := range s.courses {
		if s.courses[i].ID == courseID {
			c := s.courses[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeContentStore) ListLessons(ctx context.Context, courseID *int64, limit, offset int) ([]model.Lesson, error) {
	var out []model.Lesson
	for _, l := range s.lessons {
		if courseID == nil || l.CourseID == *courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	if offset >= len(out) {
		return []model.Lesson{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeContentStore) GetLessonByID(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	for i := range s.lessons {
		if s.lessons[i].ID == lessonID {
			l := s.lessons[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (s *fakeContentStore) GetLessonsByCourseID(ctx context.Context, courseID int64) ([]model.Lesson, error) {
	return s.ListLessons(ctx, &courseID, len(s.lessons)+1, 0)
}

func (s *fakeContentStore) CountByCourse(ctx context.Context, courseID int64) (int, error) {
	count := 0
	for _, l := range s.lessons {
		if l.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (s *fakeContentStore) GetAdjacent(ctx context.Context, lesson *model.Lesson) (*model.LessonLink, *model.LessonLink, error) {
	var prev, next *model.Lesson
	for i := range s.lessons {
		l := &s.lessons[i]
		if l.CourseID != lesson.CourseID {
			continue
		}
		if l.Order < lesson.Order && (prev == nil || l.Order > prev.Order) {
			prev = l
		}
		if l.Order > lesson.Order && (next == nil || l.Order < next.Order) {
			next = l
		}
	}
	var prevLink, nextLink *model.LessonLink
	if prev != nil {
		prevLink = &model.LessonLink{ID: prev.ID, Title: prev.Title}
	}
	if next != nil {
		nextLink = &model.LessonLink{ID: next.ID, Title: next.Title}
	}
	return prevLink, nextLink, nil
}

func (s *fakeContentStore) GetPrerequisiteIDs(ctx context.Context, lessonID int64) ([]int64, error) {
	return nil, nil
}

type pairKey struct {
	userID   int64
	lessonID int64
}

// fakeProgressStore emulates the user_progress table: one row per pair,
// enforced under a mutex the way the unique constraint plus single-statement
// upsert does in Postgres.
type fakeProgressStore struct {
	mu      sync.Mutex
	content *fakeContentStore
	records map[pairKey]*model.ProgressRecord
	nextID  int64
	seq     int64
	base    time.Time
}

func newFakeProgressStore(content *fakeContentStore) *fakeProgressStore {
	return &fakeProgressStore{
		content: content,
		records: make(map[pairKey]*model.ProgressRecord),
		base:    time.Now().UTC(),
	}
}

func (s *fakeProgressStore) tick() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Millisecond)
}

func (s *fakeProgressStore) GetByUserAndLesson(ctx context.Context, userID, lessonID int64) (*model.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[pairKey{userID, lessonID}]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (s *fakeProgressStore) Upsert(ctx context.Context, rec *model.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{rec.UserID, rec.LessonID}
	existing, ok := s.records[key]
	if !ok {
		s.nextID++
		existing = &model.ProgressRecord{ID: s.nextID, UserID: rec.UserID, LessonID: rec.LessonID}
		s.records[key] = existing
	}
	existing.IsCompleted = rec.IsCompleted
	existing.CompletedAt = rec.CompletedAt
	existing.UpdatedAt = s.tick()
	*rec = *existing
	return nil
}

func (s *fakeProgressStore) courseOf(lessonID int64) int64 {
	for _, l := range s.content.lessons {
		if l.ID == lessonID {
			return l.CourseID
		}
	}
	return 0
}

func (s *fakeProgressStore) CountCompletedInCourse(ctx context.Context, userID, courseID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key, rec := range s.records {
		if key.userID == userID && rec.IsCompleted && s.courseOf(key.lessonID) == courseID {
			count++
		}
	}
	return count, nil
}

func (s *fakeProgressStore) GetLastAccessedInCourse(ctx context.Context, userID, courseID int64) (*model.LastAccessed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *model.LastAccessed
	for key, rec := range s.records {
		if key.userID != userID || s.courseOf(key.lessonID) != courseID {
			continue
		}
		if last == nil || rec.UpdatedAt.After(last.At) {
			last = &model.LastAccessed{LessonID: key.lessonID, At: rec.UpdatedAt}
		}
	}
	return last, nil
}

func (s *fakeProgressStore) GetCompletedLessonIDs(ctx context.Context, userID, courseID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for key, rec := range s.records {
		if key.userID == userID && rec.IsCompleted && s.courseOf(key.lessonID) == courseID {
			ids = append(ids, key.lessonID)
		}
	}
	return ids, nil
}

func (s *fakeProgressStore) recordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func newTestTracker(content *fakeContentStore) (ProgressTracker, *fakeProgressStore) {
	progress := newFakeProgressStore(content)
	return NewProgressTracker(content, content, progress), progress
}

func threeLessonCourse() *fakeContentStore {
	return &fakeContentStore{
		courses: []model.Course{
			{ID: 1, Title: "Spark Basics", Order: 1},
		},
		lessons: []model.Lesson{
			{ID: 10, CourseID: 1, Title: "L1", Order: 1},
			{ID: 11, CourseID: 1, Title: "L2", Order: 2},
			{ID: 12, CourseID: 1, Title: "L3", Order: 3},
		},
	}
}

func TestGetLessonProgressNotStarted(t *testing.T) {
	tracker, _ := newTestTracker(threeLessonCourse())

	rec, err := tracker.GetLessonProgress(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record for a never-touched lesson, got %+v", rec)
	}
}

func TestUpdateLessonProgressIdempotent(t *testing.T) {
	tracker, store := newTestTracker(threeLessonCourse())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := tracker.UpdateLessonProgress(ctx, 7, 10, true)
		if err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
		if !rec.IsCompleted {
			t.Fatal("expected record to be completed")
		}
		if rec.CompletedAt == nil {
			t.Fatal("expected a completion timestamp")
		}
	}

	if got := store.recordCount(); got != 1 {
		t.Fatalf("expected exactly one record after two completions, got %d", got)
	}
}

func TestUpdateLessonProgressToggle(t *testing.T) {
	tracker, store := newTestTracker(threeLessonCourse())
	ctx := context.Background()

	if _, err := tracker.UpdateLessonProgress(ctx, 7, 10, true); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	rec, err := tracker.UpdateLessonProgress(ctx, 7, 10, false)
	if err != nil {
		t.Fatalf("uncomplete failed: %v", err)
	}

	if rec.IsCompleted {
		t.Fatal("expected record to be incomplete after toggle")
	}
	if rec.CompletedAt != nil {
		t.Fatalf("expected completion timestamp to be cleared, got %v", rec.CompletedAt)
	}
	if got := store.recordCount(); got != 1 {
		t.Fatalf("expected one record, got %d", got)
	}

	fetched, err := tracker.GetLessonProgress(ctx, 7, 10)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched == nil || fetched.IsCompleted || fetched.CompletedAt != nil {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
}

func TestGetCourseProgressEmptyCourse(t *testing.T) {
	content := &fakeContentStore{
		courses: []model.Course{{ID: 1, Title: "Empty", Order: 1}},
	}
	tracker, _ := newTestTracker(content)

	progress, err := tracker.GetCourseProgress(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.TotalLessons != 0 {
		t.Fatalf("expected 0 total lessons, got %d", progress.TotalLessons)
	}
	if progress.CompletionPercentage != 0 {
		t.Fatalf("expected 0%% for a lesson-less course, got %f", progress.CompletionPercentage)
	}
}

func TestGetCourseProgressUntouchedCourse(t *testing.T) {
	tracker, _ := newTestTracker(threeLessonCourse())

	progress, err := tracker.GetCourseProgress(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.CompletedLessons != 0 {
		t.Fatalf("expected 0 completed, got %d", progress.CompletedLessons)
	}
	if progress.LastAccessedLessonID != nil || progress.LastAccessedAt != nil {
		t.Fatalf("expected absent last-accessed fields, got %+v", progress)
	}
}

func TestCourseProgressScenario(t *testing.T) {
	tracker, _ := newTestTracker(threeLessonCourse())
	ctx := context.Background()

	if _, err := tracker.UpdateLessonProgress(ctx, 7, 10, true); err != nil {
		t.Fatalf("complete L1 failed: %v", err)
	}

	progress, err := tracker.GetCourseProgress(ctx, 7, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.TotalLessons != 3 || progress.CompletedLessons != 1 {
		t.Fatalf("expected 1/3 completed, got %d/%d", progress.CompletedLessons, progress.TotalLessons)
	}
	if math.Abs(progress.CompletionPercentage-100.0/3.0) > 1e-9 {
		t.Fatalf("expected 33.33...%%, got %f", progress.CompletionPercentage)
	}
	if progress.LastAccessedLessonID == nil || *progress.LastAccessedLessonID != 10 {
		t.Fatalf("expected last accessed lesson 10, got %+v", progress.LastAccessedLessonID)
	}
	if progress.LastAccessedAt == nil {
		t.Fatal("expected a last accessed timestamp")
	}

	next, err := tracker.GetNextLesson(ctx, 7, 1)
	if err != nil {
		t.Fatalf("next lesson failed: %v", err)
	}
	if next == nil || next.ID != 11 {
		t.Fatalf("expected next lesson L2 (id 11), got %+v", next)
	}
}

func TestGetNextLessonCourseCompleted(t *testing.T) {
	tracker, _ := newTestTracker(threeLessonCourse())
	ctx := context.Background()

	for _, lessonID := range []int64{10, 11, 12} {
		if _, err := tracker.UpdateLessonProgress(ctx, 7, lessonID, true); err != nil {
			t.Fatalf("complete %d failed: %v", lessonID, err)
		}
	}

	next, err := tracker.GetNextLesson(ctx, 7, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != nil {
		t.Fatalf("expected nil next lesson for a completed course, got %+v", next)
	}
}

func TestGetAllCoursesProgressOrdering(t *testing.T) {
	content := &fakeContentStore{
		courses: []model.Course{
			{ID: 3, Title: "Third", Order: 30},
			{ID: 1, Title: "First", Order: 10},
			{ID: 2, Title: "Second", Order: 20},
		},
		lessons: []model.Lesson{
			{ID: 10, CourseID: 1, Order: 1},
			{ID: 20, CourseID: 2, Order: 1},
			{ID: 21, CourseID: 2, Order: 2},
		},
	}
	tracker, _ := newTestTracker(content)
	ctx := context.Background()

	if _, err := tracker.UpdateLessonProgress(ctx, 7, 20, true); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	summaries, err := tracker.GetAllCoursesProgress(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected one entry per course, got %d", len(summaries))
	}

	wantOrder := []int64{1, 2, 3}
	for i, want := range wantOrder {
		if summaries[i].CourseID != want {
			t.Fatalf("entry %d: expected course %d, got %d", i, want, summaries[i].CourseID)
		}
	}

	// Untouched courses still get a zeroed entry.
	if summaries[0].CompletedLessons != 0 || summaries[2].CompletedLessons != 0 {
		t.Fatalf("expected zeros for untouched courses: %+v", summaries)
	}
	if summaries[1].CompletedLessons != 1 || summaries[1].TotalLessons != 2 {
		t.Fatalf("expected 1/2 for touched course, got %+v", summaries[1])
	}
	if summaries[1].CourseTitle != "Second" {
		t.Fatalf("expected course title to be carried, got %q", summaries[1].CourseTitle)
	}
}

// flakyProgressStore fails the next failures upserts before delegating,
// emulating a driver error surfacing from the constraint check.
type flakyProgressStore struct {
	*fakeProgressStore
	failures int
	failWith error
	upserts  int
}

func (s *flakyProgressStore) Upsert(ctx context.Context, rec *model.ProgressRecord) error {
	s.upserts++
	if s.failures > 0 {
		s.failures--
		return s.failWith
	}
	return s.fakeProgressStore.Upsert(ctx, rec)
}

func TestUpdateLessonProgressRetriesOnUniqueViolation(t *testing.T) {
	content := threeLessonCourse()
	store := &flakyProgressStore{
		fakeProgressStore: newFakeProgressStore(content),
		failures:          1,
		failWith:          fmt.Errorf("failed to upsert progress: %w", &pgconn.PgError{Code: "23505"}),
	}
	tracker := NewProgressTracker(content, content, store)

	rec, err := tracker.UpdateLessonProgress(context.Background(), 7, 10, true)
	if err != nil {
		t.Fatalf("expected the retry to absorb the unique violation, got %v", err)
	}
	if rec == nil || !rec.IsCompleted || rec.CompletedAt == nil {
		t.Fatalf("unexpected record after retry: %+v", rec)
	}
	if store.upserts != 2 {
		t.Fatalf("expected exactly one retry, got %d upserts", store.upserts)
	}
	if got := store.recordCount(); got != 1 {
		t.Fatalf("expected exactly one record, got %d", got)
	}
}

func TestUpdateLessonProgressOtherErrorNotRetried(t *testing.T) {
	content := threeLessonCourse()
	storeErr := errors.New("connection reset")
	store := &flakyProgressStore{
		fakeProgressStore: newFakeProgressStore(content),
		failures:          1,
		failWith:          storeErr,
	}
	tracker := NewProgressTracker(content, content, store)

	_, err := tracker.UpdateLessonProgress(context.Background(), 7, 10, true)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected the store error to propagate, got %v", err)
	}
	if store.upserts != 1 {
		t.Fatalf("expected no retry for a non-constraint error, got %d upserts", store.upserts)
	}
}

func TestConcurrentFirstCompletion(t *testing.T) {
	tracker, store := newTestTracker(threeLessonCourse())
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tracker.UpdateLessonProgress(ctx, 7, 10, true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent update failed: %v", err)
	}

	if got := store.recordCount(); got != 1 {
		t.Fatalf("expected exactly one record after concurrent completions, got %d", got)
	}
}
