package dto

import (
	"time"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

// EnrollRequest captures the query parameters of the enroll endpoint.
type EnrollRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
}

// UpdateProgressRequest captures the progress update parameters.
type UpdateProgressRequest struct {
	ProgressPercentage int `json:"progress_percentage" validate:"min=0,max=100"`
}

// EnrollmentResponse is the record shape returned by every endpoint.
type EnrollmentResponse struct {
	ID                 string                  `json:"id"`
	UserID             string                  `json:"user_id"`
	CourseID           string                  `json:"course_id"`
	Status             domain.EnrollmentStatus `json:"status"`
	ProgressPercentage int                     `json:"progress_percentage"`
	EnrolledAt         time.Time               `json:"enrolled_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	CompletedAt        *time.Time              `json:"completed_at,omitempty"`
}

// CountResponse wraps a single aggregate count.
type CountResponse struct {
	Count int64 `json:"count"`
}
