package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

type pairKey struct {
	userID   string
	courseID string
}

// enrollmentMemoryRepository is a mutex-guarded in-memory store with the same
// contract as the postgres repository, including the uniqueness guarantee on
// (user, course). It backs local development without a database and the
// service test suite.
type enrollmentMemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.Enrollment
	byPair  map[pairKey]string
	ordered []string
}

// NewEnrollmentMemoryRepository instantiates the in-memory repository.
func NewEnrollmentMemoryRepository() EnrollmentRepository {
	return &enrollmentMemoryRepository{
		byID:   make(map[string]*domain.Enrollment),
		byPair: make(map[pairKey]string),
	}
}

func (r *enrollmentMemoryRepository) Create(_ context.Context, enrollment *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{userID: enrollment.UserID, courseID: enrollment.CourseID}
	if _, exists := r.byPair[key]; exists {
		return ErrDuplicateEnrollment
	}
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	stored := *enrollment
	r.byID[stored.ID] = &stored
	r.byPair[key] = stored.ID
	r.ordered = append(r.ordered, stored.ID)
	return nil
}

func (r *enrollmentMemoryRepository) GetByID(_ context.Context, id string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id)
}

func (r *enrollmentMemoryRepository) GetByUserAndCourse(_ context.Context, userID, courseID string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPair[pairKey{userID: userID, courseID: courseID}]
	if !ok {
		return nil, ErrEnrollmentNotFound
	}
	return r.lookup(id)
}

func (r *enrollmentMemoryRepository) ListAll(_ context.Context) ([]domain.Enrollment, error) {
	return r.filter(func(*domain.Enrollment) bool { return true }), nil
}

func (r *enrollmentMemoryRepository) ListByUser(_ context.Context, userID string) ([]domain.Enrollment, error) {
	return r.filter(func(e *domain.Enrollment) bool { return e.UserID == userID }), nil
}

func (r *enrollmentMemoryRepository) ListByCourse(_ context.Context, courseID string) ([]domain.Enrollment, error) {
	return r.filter(func(e *domain.Enrollment) bool { return e.CourseID == courseID }), nil
}

func (r *enrollmentMemoryRepository) ListByStatus(_ context.Context, status domain.EnrollmentStatus) ([]domain.Enrollment, error) {
	return r.filter(func(e *domain.Enrollment) bool { return e.Status == status }), nil
}

func (r *enrollmentMemoryRepository) ListByUserAndStatus(_ context.Context, userID string, status domain.EnrollmentStatus) ([]domain.Enrollment, error) {
	return r.filter(func(e *domain.Enrollment) bool { return e.UserID == userID && e.Status == status }), nil
}

func (r *enrollmentMemoryRepository) ListByCourseAndStatus(_ context.Context, courseID string, status domain.EnrollmentStatus) ([]domain.Enrollment, error) {
	return r.filter(func(e *domain.Enrollment) bool { return e.CourseID == courseID && e.Status == status }), nil
}

// Mutate holds the store lock across the read-modify-write so concurrent
// mutations of the same enrollment serialize, mirroring the row lock the
// postgres repository takes.
func (r *enrollmentMemoryRepository) Mutate(_ context.Context, id string, apply func(*domain.Enrollment) error) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := apply(current); err != nil {
		return nil, err
	}
	stored := *current
	r.byID[id] = &stored
	return current, nil
}

func (r *enrollmentMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enrollment, ok := r.byID[id]
	if !ok {
		return ErrEnrollmentNotFound
	}
	delete(r.byID, id)
	delete(r.byPair, pairKey{userID: enrollment.UserID, courseID: enrollment.CourseID})
	for i, storedID := range r.ordered {
		if storedID == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}

func (r *enrollmentMemoryRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	items, _ := r.ListByCourse(ctx, courseID)
	return int64(len(items)), nil
}

func (r *enrollmentMemoryRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	items, _ := r.ListByUser(ctx, userID)
	return int64(len(items)), nil
}

func (r *enrollmentMemoryRepository) CountByStatus(ctx context.Context, status domain.EnrollmentStatus) (int64, error) {
	items, _ := r.ListByStatus(ctx, status)
	return int64(len(items)), nil
}

func (r *enrollmentMemoryRepository) CountAll(ctx context.Context) (int64, error) {
	items, _ := r.ListAll(ctx)
	return int64(len(items)), nil
}

// lookup returns a copy so callers cannot mutate stored state outside Mutate.
func (r *enrollmentMemoryRepository) lookup(id string) (*domain.Enrollment, error) {
	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrEnrollmentNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *enrollmentMemoryRepository) filter(keep func(*domain.Enrollment) bool) []domain.Enrollment {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Enrollment, 0, len(r.ordered))
	for _, id := range r.ordered {
		if enrollment, ok := r.byID[id]; ok && keep(enrollment) {
			result = append(result, *enrollment)
		}
	}
	return result
}
