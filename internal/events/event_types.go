package events

import (
	"time"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEnrollmentCreated         EventType = "enrollment_created"
	EventEnrollmentProgressUpdated EventType = "enrollment_progress_updated"
	EventEnrollmentStatusChanged   EventType = "enrollment_status_changed"
	EventEnrollmentRemoved         EventType = "enrollment_removed"
)

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	EnrollmentID string      `json:"enrollment_id"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// EnrollmentCreatedPayload payload.
type EnrollmentCreatedPayload struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}

// EnrollmentProgressUpdatedPayload payload.
type EnrollmentProgressUpdatedPayload struct {
	OldProgress int `json:"old_progress"`
	NewProgress int `json:"new_progress"`
}

// EnrollmentStatusChangedPayload payload.
type EnrollmentStatusChangedPayload struct {
	OldStatus domain.EnrollmentStatus `json:"old_status"`
	NewStatus domain.EnrollmentStatus `json:"new_status"`
	Trigger   string                  `json:"trigger,omitempty"`
}

// EnrollmentRemovedPayload payload.
type EnrollmentRemovedPayload struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}
