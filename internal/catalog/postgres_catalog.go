package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

// PostgresCatalog reads the users and courses tables of the shared database.
// This matches deployments where the catalog contexts live in the same
// instance; absence is still distinguished from query failure.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog builds the database-backed catalog reader.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// UserExists checks the users table for the given id.
func (c *PostgresCatalog) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetCourse fetches the course projection, nil when absent.
func (c *PostgresCatalog) GetCourse(ctx context.Context, courseID string) (*domain.CatalogCourse, error) {
	var course domain.CatalogCourse
	err := c.pool.QueryRow(ctx, `SELECT id, title, status FROM courses WHERE id=$1`, courseID).Scan(
		&course.ID,
		&course.Title,
		&course.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}
