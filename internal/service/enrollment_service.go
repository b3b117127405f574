package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/course-enrollment-service/internal/cache"
	"github.com/spec-kit/course-enrollment-service/internal/domain"
	"github.com/spec-kit/course-enrollment-service/internal/events"
	"github.com/spec-kit/course-enrollment-service/internal/repository"
	apperrors "github.com/spec-kit/course-enrollment-service/pkg/util"
)

// EnrollmentService is the enrollment lifecycle engine: it validates requests
// against the catalog and the store, performs the state transitions, and
// exposes the read-only reporting surface.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	catalog     domain.CatalogLookup
	counts      *cache.CountCache
	dispatcher  events.Dispatcher
}

// EnrollmentDependencies bundles collaborators for the service.
type EnrollmentDependencies struct {
	EnrollmentRepo repository.EnrollmentRepository
	Catalog        domain.CatalogLookup
	CountCache     *cache.CountCache
	Dispatcher     events.Dispatcher
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	return &EnrollmentService{
		enrollments: deps.EnrollmentRepo,
		catalog:     deps.Catalog,
		counts:      deps.CountCache,
		dispatcher:  deps.Dispatcher,
	}
}

// Enroll creates a new enrollment for the (user, course) pair. Every
// precondition is checked before the write; the store's uniqueness constraint
// is the final arbiter when two enrolls race past the duplicate pre-check.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	exists, err := s.catalog.UserExists(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailable("catalog", err)
	}
	if !exists {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}

	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailable("catalog", err)
	}
	if course == nil {
		return nil, apperrors.NewNotFound("course", map[string]any{"course_id": courseID})
	}

	if _, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID); err == nil {
		return nil, apperrors.NewConflict("user is already enrolled in this course", map[string]any{
			"user_id":   userID,
			"course_id": courseID,
		})
	} else if !errors.Is(err, repository.ErrEnrollmentNotFound) {
		return nil, err
	}

	if course.Status != domain.CourseStatusPublished {
		return nil, apperrors.NewInvalidState("cannot enroll in a course that is not published", map[string]any{
			"course_id":     courseID,
			"course_status": string(course.Status),
		})
	}

	enrollment := domain.NewEnrollment(userID, courseID, time.Now())
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, apperrors.NewConflict("user is already enrolled in this course", map[string]any{
				"user_id":   userID,
				"course_id": courseID,
			})
		}
		return nil, err
	}

	s.counts.Invalidate(ctx, userID, courseID)
	s.publishEvent(ctx, events.Event{
		Type:         events.EventEnrollmentCreated,
		EnrollmentID: enrollment.ID,
		Payload: events.EnrollmentCreatedPayload{
			UserID:   userID,
			CourseID: courseID,
		},
	})
	return enrollment, nil
}

// UpdateProgress records a new progress percentage. Crossing 100 is the
// data-driven path into COMPLETED; the domain transition function owns that
// rule so the explicit Complete command cannot diverge from it.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, enrollmentID string, progress int) (*domain.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, apperrors.NewValidationError("progress percentage must be within [0, 100]", map[string]any{
			"progress_percentage": progress,
		})
	}

	var oldProgress int
	var oldStatus domain.EnrollmentStatus
	enrollment, err := s.enrollments.Mutate(ctx, enrollmentID, func(e *domain.Enrollment) error {
		oldProgress = e.ProgressPercentage
		oldStatus = e.Status
		return e.ApplyProgress(progress, time.Now())
	})
	if err != nil {
		return nil, s.mapLookupError(err, enrollmentID)
	}

	s.counts.Invalidate(ctx, enrollment.UserID, enrollment.CourseID)
	s.publishEvent(ctx, events.Event{
		Type:         events.EventEnrollmentProgressUpdated,
		EnrollmentID: enrollment.ID,
		Payload: events.EnrollmentProgressUpdatedPayload{
			OldProgress: oldProgress,
			NewProgress: enrollment.ProgressPercentage,
		},
	})
	if enrollment.Status != oldStatus {
		s.publishStatusChange(ctx, enrollment, oldStatus, "progress_threshold")
	}
	return enrollment, nil
}

// Complete marks the enrollment completed regardless of current progress.
func (s *EnrollmentService) Complete(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	var oldStatus domain.EnrollmentStatus
	enrollment, err := s.enrollments.Mutate(ctx, enrollmentID, func(e *domain.Enrollment) error {
		oldStatus = e.Status
		e.MarkCompleted(time.Now())
		return nil
	})
	if err != nil {
		return nil, s.mapLookupError(err, enrollmentID)
	}

	s.counts.Invalidate(ctx, enrollment.UserID, enrollment.CourseID)
	if enrollment.Status != oldStatus {
		s.publishStatusChange(ctx, enrollment, oldStatus, "explicit_complete")
	}
	return enrollment, nil
}

// Drop marks the enrollment dropped while keeping the record and its progress.
func (s *EnrollmentService) Drop(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	var oldStatus domain.EnrollmentStatus
	enrollment, err := s.enrollments.Mutate(ctx, enrollmentID, func(e *domain.Enrollment) error {
		oldStatus = e.Status
		e.MarkDropped(time.Now())
		return nil
	})
	if err != nil {
		return nil, s.mapLookupError(err, enrollmentID)
	}

	s.counts.Invalidate(ctx, enrollment.UserID, enrollment.CourseID)
	if enrollment.Status != oldStatus {
		s.publishStatusChange(ctx, enrollment, oldStatus, "dropped")
	}
	return enrollment, nil
}

// Unenroll hard-deletes the enrollment for the pair. Returns false when no
// record exists, true after a successful removal.
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, courseID string) (bool, error) {
	enrollment, err := s.enrollments.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.enrollments.Delete(ctx, enrollment.ID); err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return false, nil
		}
		return false, err
	}

	s.counts.Invalidate(ctx, userID, courseID)
	s.publishEvent(ctx, events.Event{
		Type:         events.EventEnrollmentRemoved,
		EnrollmentID: enrollment.ID,
		Payload: events.EnrollmentRemovedPayload{
			UserID:   userID,
			CourseID: courseID,
		},
	})
	return true, nil
}

// GetEnrollment fetches a single enrollment by id.
func (s *EnrollmentService) GetEnrollment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, s.mapLookupError(err, enrollmentID)
	}
	return enrollment, nil
}

// ListEnrollments returns every enrollment.
func (s *EnrollmentService) ListEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	return s.enrollments.ListAll(ctx)
}

// ListByUser returns the enrollments of one user.
func (s *EnrollmentService) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	return s.enrollments.ListByUser(ctx, userID)
}

// ListByCourse returns the enrollments of one course.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	return s.enrollments.ListByCourse(ctx, courseID)
}

// ListByStatus filters enrollments by a raw status string.
func (s *EnrollmentService) ListByStatus(ctx context.Context, rawStatus string) ([]domain.Enrollment, error) {
	status, err := s.parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.enrollments.ListByStatus(ctx, status)
}

// ListByUserAndStatus filters one user's enrollments by status.
func (s *EnrollmentService) ListByUserAndStatus(ctx context.Context, userID, rawStatus string) ([]domain.Enrollment, error) {
	status, err := s.parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.enrollments.ListByUserAndStatus(ctx, userID, status)
}

// ListByCourseAndStatus filters one course's enrollments by status.
func (s *EnrollmentService) ListByCourseAndStatus(ctx context.Context, courseID, rawStatus string) ([]domain.Enrollment, error) {
	status, err := s.parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.enrollments.ListByCourseAndStatus(ctx, courseID, status)
}

// CountByCourse returns the number of enrollments for a course.
func (s *EnrollmentService) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	return s.cachedCount(ctx, cache.CourseKey(courseID), func() (int64, error) {
		return s.enrollments.CountByCourse(ctx, courseID)
	})
}

// CountByUser returns the number of courses a user is enrolled in.
func (s *EnrollmentService) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.cachedCount(ctx, cache.UserKey(userID), func() (int64, error) {
		return s.enrollments.CountByUser(ctx, userID)
	})
}

// CountByStatus returns the number of enrollments in a raw status.
func (s *EnrollmentService) CountByStatus(ctx context.Context, rawStatus string) (int64, error) {
	status, err := s.parseStatus(rawStatus)
	if err != nil {
		return 0, err
	}
	return s.cachedCount(ctx, cache.StatusKey(status), func() (int64, error) {
		return s.enrollments.CountByStatus(ctx, status)
	})
}

// CountAll returns the total number of enrollments.
func (s *EnrollmentService) CountAll(ctx context.Context) (int64, error) {
	return s.cachedCount(ctx, cache.TotalKey(), func() (int64, error) {
		return s.enrollments.CountAll(ctx)
	})
}

func (s *EnrollmentService) parseStatus(raw string) (domain.EnrollmentStatus, error) {
	status, err := domain.ParseEnrollmentStatus(raw)
	if err != nil {
		return "", apperrors.NewValidationError("invalid enrollment status", map[string]any{"status": raw})
	}
	return status, nil
}

func (s *EnrollmentService) cachedCount(ctx context.Context, key string, load func() (int64, error)) (int64, error) {
	if count, ok := s.counts.Get(ctx, key); ok {
		return count, nil
	}
	count, err := load()
	if err != nil {
		return 0, err
	}
	s.counts.Set(ctx, key, count)
	return count, nil
}

func (s *EnrollmentService) mapLookupError(err error, enrollmentID string) error {
	if errors.Is(err, repository.ErrEnrollmentNotFound) {
		return apperrors.NewNotFound("enrollment", map[string]any{"enrollment_id": enrollmentID})
	}
	return err
}

func (s *EnrollmentService) publishStatusChange(ctx context.Context, enrollment *domain.Enrollment, oldStatus domain.EnrollmentStatus, trigger string) {
	s.publishEvent(ctx, events.Event{
		Type:         events.EventEnrollmentStatusChanged,
		EnrollmentID: enrollment.ID,
		Payload: events.EnrollmentStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: enrollment.Status,
			Trigger:   trigger,
		},
	})
}

func (s *EnrollmentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
