package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

var (
	// ErrEnrollmentNotFound is returned when no enrollment matches a lookup.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrDuplicateEnrollment is returned when an insert would violate the
	// one-enrollment-per-(user, course) constraint.
	ErrDuplicateEnrollment = errors.New("enrollment already exists for user and course")
)

// EnrollmentRepository encapsulates enrollment persistence. Create enforces
// uniqueness on (user, course) at the store level so a duplicate surfaces as
// ErrDuplicateEnrollment even when two inserts race past the pre-check.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error)
	ListAll(ctx context.Context) ([]domain.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error)
	ListByStatus(ctx context.Context, status domain.EnrollmentStatus) ([]domain.Enrollment, error)
	ListByUserAndStatus(ctx context.Context, userID string, status domain.EnrollmentStatus) ([]domain.Enrollment, error)
	ListByCourseAndStatus(ctx context.Context, courseID string, status domain.EnrollmentStatus) ([]domain.Enrollment, error)

	// Mutate runs a read-modify-write on a single enrollment while holding a
	// per-row lock, so concurrent mutations of the same record are serialized
	// and never lost. Returns ErrEnrollmentNotFound when the id is absent.
	Mutate(ctx context.Context, id string, apply func(*domain.Enrollment) error) (*domain.Enrollment, error)

	Delete(ctx context.Context, id string) error

	CountByCourse(ctx context.Context, courseID string) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByStatus(ctx context.Context, status domain.EnrollmentStatus) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}
