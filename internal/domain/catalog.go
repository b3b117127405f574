package domain

import "context"

// CourseStatus is the publication state of a course as reported by the
// catalog. Only PUBLISHED courses accept new enrollments.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// CatalogCourse is the narrow course projection the enrollment engine reads.
type CatalogCourse struct {
	ID     string
	Title  string
	Status CourseStatus
}

// CatalogLookup is the read-only capability onto the user/course bounded
// contexts. GetCourse returns nil when the course does not exist; transport
// failures are returned as errors, distinct from absence.
type CatalogLookup interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	GetCourse(ctx context.Context, courseID string) (*CatalogCourse, error)
}
