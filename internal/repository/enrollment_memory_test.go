package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

func newTestEnrollment(userID, courseID string) *domain.Enrollment {
	return domain.NewEnrollment(userID, courseID, time.Now())
}

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	e := newTestEnrollment("user-1", "course-1")
	require.NoError(t, repo.Create(ctx, e))
	require.NotEmpty(t, e.ID)

	byID, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.UserID, byID.UserID)

	byPair, err := repo.GetByUserAndCourse(ctx, "user-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, e.ID, byPair.ID)
}

func TestMemoryRepository_DuplicatePair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	require.NoError(t, repo.Create(ctx, newTestEnrollment("user-1", "course-1")))
	err := repo.Create(ctx, newTestEnrollment("user-1", "course-1"))
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)

	// other pairs are unaffected
	require.NoError(t, repo.Create(ctx, newTestEnrollment("user-1", "course-2")))
	require.NoError(t, repo.Create(ctx, newTestEnrollment("user-2", "course-1")))
}

func TestMemoryRepository_ConcurrentCreateSamePair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, newTestEnrollment("user-1", "course-1"))
		}()
	}
	wg.Wait()
	close(errs)

	var created, conflicts int
	for err := range errs {
		if err == nil {
			created++
		} else {
			require.ErrorIs(t, err, ErrDuplicateEnrollment)
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestMemoryRepository_LookupMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	_, err = repo.GetByUserAndCourse(ctx, "user-1", "course-1")
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrEnrollmentNotFound)

	_, err = repo.Mutate(ctx, "missing", func(*domain.Enrollment) error { return nil })
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestMemoryRepository_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	e := newTestEnrollment("user-1", "course-1")
	require.NoError(t, repo.Create(ctx, e))
	require.NoError(t, repo.Delete(ctx, e.ID))

	_, err := repo.GetByUserAndCourse(ctx, "user-1", "course-1")
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	// pair is free again after the delete
	require.NoError(t, repo.Create(ctx, newTestEnrollment("user-1", "course-1")))
}

func TestMemoryRepository_MutatePersistsChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	e := newTestEnrollment("user-1", "course-1")
	require.NoError(t, repo.Create(ctx, e))

	updated, err := repo.Mutate(ctx, e.ID, func(current *domain.Enrollment) error {
		return current.ApplyProgress(60, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.ProgressPercentage)

	reloaded, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, reloaded.ProgressPercentage)
}

func TestMemoryRepository_MutateSerializesConcurrentWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	e := newTestEnrollment("user-1", "course-1")
	require.NoError(t, repo.Create(ctx, e))

	// Each goroutine bumps progress by one; a lost update would leave the
	// final value short.
	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, e.ID, func(current *domain.Enrollment) error {
				return current.ApplyProgress(current.ProgressPercentage+1, time.Now())
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, final.ProgressPercentage)
}

func TestMemoryRepository_ListsAndCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEnrollmentMemoryRepository()

	first := newTestEnrollment("user-1", "course-1")
	second := newTestEnrollment("user-1", "course-2")
	third := newTestEnrollment("user-2", "course-1")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	_, err := repo.Mutate(ctx, second.ID, func(current *domain.Enrollment) error {
		current.MarkDropped(time.Now())
		return nil
	})
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// insertion order is preserved
	assert.Equal(t, first.ID, all[0].ID)

	byUser, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byCourse, err := repo.ListByCourse(ctx, "course-1")
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	dropped, err := repo.ListByStatus(ctx, domain.EnrollmentStatusDropped)
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	assert.Equal(t, second.ID, dropped[0].ID)

	userEnrolled, err := repo.ListByUserAndStatus(ctx, "user-1", domain.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	assert.Len(t, userEnrolled, 1)

	courseEnrolled, err := repo.ListByCourseAndStatus(ctx, "course-1", domain.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	assert.Len(t, courseEnrolled, 2)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	byUserCount, err := repo.CountByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, byUserCount)

	byCourseCount, err := repo.CountByCourse(ctx, "course-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, byCourseCount)

	byStatusCount, err := repo.CountByStatus(ctx, domain.EnrollmentStatusDropped)
	require.NoError(t, err)
	assert.EqualValues(t, 1, byStatusCount)
}
