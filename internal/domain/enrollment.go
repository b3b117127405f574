package domain

import (
	"fmt"
	"strings"
	"time"
)

// EnrollmentStatus enumerates lifecycle states for enrollments.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentStatusCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentStatusDropped    EnrollmentStatus = "DROPPED"
)

// ParseEnrollmentStatus maps a status string, case-insensitively, to a known
// status value.
func ParseEnrollmentStatus(raw string) (EnrollmentStatus, error) {
	status := EnrollmentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case EnrollmentStatusEnrolled, EnrollmentStatusInProgress, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return status, nil
	}
	return "", fmt.Errorf("unknown enrollment status %q", raw)
}

// Enrollment is the aggregate linking one user to one course.
type Enrollment struct {
	ID                 string
	UserID             string
	CourseID           string
	Status             EnrollmentStatus
	ProgressPercentage int
	EnrolledAt         time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time
}

// IsCompleted reports whether the enrollment reached its terminal completed
// state.
func (e *Enrollment) IsCompleted() bool {
	return e.Status == EnrollmentStatusCompleted
}

// ApplyProgress records a new progress percentage and derives the canonical
// next status. Reaching 100 forces COMPLETED; CompletedAt is stamped only on
// the first completion so the timestamp stays meaningful across repeated
// updates at 100.
func (e *Enrollment) ApplyProgress(progress int, now time.Time) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress percentage %d outside [0, 100]", progress)
	}
	e.ProgressPercentage = progress
	if progress >= 100 {
		e.complete(now)
	}
	e.UpdatedAt = now
	return nil
}

// MarkCompleted is the explicit completion override: progress jumps to 100
// regardless of its current value.
func (e *Enrollment) MarkCompleted(now time.Time) {
	e.ProgressPercentage = 100
	e.complete(now)
	e.UpdatedAt = now
}

// MarkDropped marks the record inactive while retaining its history. Progress
// and CompletedAt are left untouched; dropping a completed enrollment is not
// guarded against.
func (e *Enrollment) MarkDropped(now time.Time) {
	e.Status = EnrollmentStatusDropped
	e.UpdatedAt = now
}

// complete is the single transition point into COMPLETED, shared by the
// progress threshold and the explicit command.
func (e *Enrollment) complete(now time.Time) {
	e.Status = EnrollmentStatusCompleted
	if e.CompletedAt == nil {
		completedAt := now
		e.CompletedAt = &completedAt
	}
}

// NewEnrollment constructs a fresh enrollment at the start of its lifecycle.
func NewEnrollment(userID, courseID string, now time.Time) *Enrollment {
	return &Enrollment{
		UserID:             userID,
		CourseID:           courseID,
		Status:             EnrollmentStatusEnrolled,
		ProgressPercentage: 0,
		EnrolledAt:         now,
		UpdatedAt:          now,
	}
}
