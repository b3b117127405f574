package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

const uniqueViolationCode = "23505"

const enrollmentColumns = `id, user_id, course_id, status, progress_percentage, enrolled_at, updated_at, completed_at`

type enrollmentPostgresRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentPostgresRepository instantiates the pgx-backed repository.
func NewEnrollmentPostgresRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentPostgresRepository{pool: pool}
}

func (r *enrollmentPostgresRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        INSERT INTO enrollments (user_id, course_id, status, progress_percentage, enrolled_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.Status,
		enrollment.ProgressPercentage,
		enrollment.EnrolledAt,
		enrollment.UpdatedAt,
	).Scan(&enrollment.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateEnrollment
		}
		return err
	}
	return nil
}

func (r *enrollmentPostgresRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id=$1`, enrollmentColumns)
	return r.fetchSingle(ctx, r.pool, query, id)
}

func (r *enrollmentPostgresRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE user_id=$1 AND course_id=$2`, enrollmentColumns)
	return r.fetchSingle(ctx, r.pool, query, userID, courseID)
}

func (r *enrollmentPostgresRepository) ListAll(ctx context.Context) ([]domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments ORDER BY enrolled_at`, enrollmentColumns)
	return r.fetchMany(ctx, query)
}

func (r *enrollmentPostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE user_id=$1 ORDER BY enrolled_at`, enrollmentColumns)
	return r.fetchMany(ctx, query, userID)
}

func (r *enrollmentPostgresRepository) ListByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE course_id=$1 ORDER BY enrolled_at`, enrollmentColumns)
	return r.fetchMany(ctx, query, courseID)
}

func (r *enrollmentPostgresRepository) ListByStatus(ctx context.Context, status domain.EnrollmentStatus) ([]domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE status=$1 ORDER BY enrolled_at`, enrollmentColumns)
	return r.fetchMany(ctx, query, status)
}

func (r *enrollmentPostgresRepository) ListByUserAndStatus(ctx context.Context, userID string, status domain.EnrollmentStatus) ([]domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE user_id=$1 AND status=$2 ORDER BY enrolled_at`, enrollmentColumns)
	return r.fetchMany(ctx, query, userID, status)
}

func (r *enrollmentPostgresRepository) ListByCourseAndStatus(ctx context.Context, courseID string, status domain.EnrollmentStatus) ([]domain.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE course_id=$1 AND status=$2 ORDER BY enrolled_at`, enrollmentColumns)
	return r.fetchMany(ctx, query, courseID, status)
}

// Mutate locks the target row for the duration of the transaction so
// concurrent read-modify-writes of the same enrollment serialize instead of
// overwriting each other. Rows for other enrollments are never touched.
func (r *enrollmentPostgresRepository) Mutate(ctx context.Context, id string, apply func(*domain.Enrollment) error) (*domain.Enrollment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id=$1 FOR UPDATE`, enrollmentColumns)
	enrollment, err := r.fetchSingle(ctx, tx, query, id)
	if err != nil {
		return nil, err
	}
	if err := apply(enrollment); err != nil {
		return nil, err
	}

	const update = `
        UPDATE enrollments SET status=$1, progress_percentage=$2, updated_at=$3, completed_at=$4
        WHERE id=$5`
	cmd, err := tx.Exec(ctx, update,
		enrollment.Status,
		enrollment.ProgressPercentage,
		enrollment.UpdatedAt,
		enrollment.CompletedAt,
		enrollment.ID,
	)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrEnrollmentNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (r *enrollmentPostgresRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *enrollmentPostgresRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id=$1`, courseID)
}

func (r *enrollmentPostgresRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM enrollments WHERE user_id=$1`, userID)
}

func (r *enrollmentPostgresRepository) CountByStatus(ctx context.Context, status domain.EnrollmentStatus) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM enrollments WHERE status=$1`, status)
}

func (r *enrollmentPostgresRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM enrollments`)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *enrollmentPostgresRepository) fetchSingle(ctx context.Context, q rowQuerier, query string, args ...any) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := q.QueryRow(ctx, query, args...).Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.Status,
		&enrollment.ProgressPercentage,
		&enrollment.EnrolledAt,
		&enrollment.UpdatedAt,
		&enrollment.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentPostgresRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Enrollment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Enrollment
	for rows.Next() {
		var enrollment domain.Enrollment
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.UserID,
			&enrollment.CourseID,
			&enrollment.Status,
			&enrollment.ProgressPercentage,
			&enrollment.EnrolledAt,
			&enrollment.UpdatedAt,
			&enrollment.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, enrollment)
	}
	return result, rows.Err()
}

func (r *enrollmentPostgresRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
